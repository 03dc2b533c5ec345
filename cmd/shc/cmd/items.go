package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/donaldgifford/secondhand-client/internal/carousel"
	"github.com/donaldgifford/secondhand-client/internal/listing"
	"github.com/donaldgifford/secondhand-client/pkg/logger"
	domain "github.com/donaldgifford/secondhand-client/pkg/types"
)

func itemsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "items",
		Short: "Browse marketplace listings",
	}

	cmd.AddCommand(
		itemsListCmd(),
		itemsGetCmd(),
		itemsBrowseCmd(),
	)

	return cmd
}

func itemsListCmd() *cobra.Command {
	var (
		page        int
		interactive bool
		watch       time.Duration
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List available listings, one page at a time",
		Example: `  shc items list
  shc items list --page 3
  shc items list --interactive
  shc items list --watch 30s --metrics-addr :9091`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			if err := a.requireLogin(); err != nil {
				return err
			}

			coord, err := a.coordinator(listing.ScopeMarket)
			if err != nil {
				return err
			}
			if err := coord.FetchPage(cmd.Context(), page); err != nil {
				return a.authFailed(err)
			}
			if err := printPage(a.out, listing.ScopeMarket, coord.Snapshot()); err != nil {
				return err
			}
			switch {
			case interactive:
				return a.pageThrough(cmd.Context(), coord)
			case watch > 0:
				return a.watchPage(cmd.Context(), coord, watch, metricsAddr)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "page number (1-based)")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "page through listings with commands read from stdin")
	cmd.Flags().DurationVar(&watch, "watch", 0, "re-fetch the page on this interval until interrupted")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while watching")
	cmd.MarkFlagsMutuallyExclusive("interactive", "watch")

	return cmd
}

// watchPage reprints coord's page after every scheduled refresh until ctx
// is done.
func (a *app) watchPage(ctx context.Context, coord *listing.Coordinator, every time.Duration, metricsAddr string) error {
	if metricsAddr != "" {
		srv := &http.Server{
			Addr:              metricsAddr,
			Handler:           promhttp.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.log.Error("metrics server failed", "addr", metricsAddr, "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				a.log.Warn("metrics server shutdown", "error", err)
			}
		}()
		a.log.Info("serving metrics", "addr", metricsAddr)
	}

	unsubscribe := coord.Subscribe(func(st listing.PageState) {
		switch {
		case st.Loading:
		case st.Err != "":
			a.printf("Refresh failed: %s\n", st.Err)
		default:
			a.printf("\n-- refreshed %s --\n", time.Now().Format(time.TimeOnly))
			if err := printPage(a.out, coord.Scope(), st); err != nil {
				a.log.Warn("printing page", "error", err)
			}
		}
	})
	defer unsubscribe()

	r, err := listing.NewRefresher(coord, every, logger.Component(a.log, "refresher"))
	if err != nil {
		return err
	}
	r.Start()
	<-ctx.Done()
	<-r.Stop().Done()
	return nil
}

func itemsGetCmd() *cobra.Command {
	var (
		image string
		index int
	)

	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one listing with its selected image",
		Example: `  shc items get 42
  shc items get 42 --index 2
  shc items get 42 --image https://img.example.com/b.jpg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			if err := a.requireLogin(); err != nil {
				return err
			}

			d, err := a.api.GetItem(cmd.Context(), args[0])
			if err != nil {
				return a.authFailed(fmt.Errorf("loading listing %s: %w", args[0], err))
			}

			m := carousel.New(d.Images)
			switch {
			case image != "":
				if !m.Select(image) {
					return fmt.Errorf("%w: listing %s has no image %s", domain.ErrInvalidArgument, d.ID, image)
				}
			case index > 0:
				if !m.SelectIndex(index - 1) {
					return fmt.Errorf("%w: listing %s has %d images", domain.ErrInvalidArgument, d.ID, m.Len())
				}
			}
			return printDetail(a.out, d, m)
		},
	}

	cmd.Flags().StringVar(&image, "image", "", "select the image with this URL")
	cmd.Flags().IntVar(&index, "index", 0, "select the image at this position (1-based)")
	cmd.MarkFlagsMutuallyExclusive("image", "index")

	return cmd
}

func itemsBrowseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse <id>",
		Short: "Step through a listing's images interactively",
		Long: "Show a listing and step through its images. Commands read from stdin:\n" +
			"  n       next image\n" +
			"  p       previous image\n" +
			"  <num>   jump to image <num> (1-based)\n" +
			"  r       reload the listing, keeping the selection if its images are unchanged\n" +
			"  q       quit",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			if err := a.requireLogin(); err != nil {
				return err
			}

			d, err := a.api.GetItem(cmd.Context(), args[0])
			if err != nil {
				return a.authFailed(fmt.Errorf("loading listing %s: %w", args[0], err))
			}

			m := carousel.New(d.Images)
			if err := printDetail(a.out, d, m); err != nil {
				return err
			}
			if m.Len() == 0 {
				return nil
			}
			return browse(cmd.Context(), a, d.ID, m)
		},
	}
}

// browse runs the carousel command loop for listing id until q, end of
// input or ctx is done.
func browse(ctx context.Context, a *app, id string, m *carousel.Model) error {
	sc := bufio.NewScanner(a.in)
	for {
		a.printf("[n]ext, [p]rev, number, [r]eload, [q]uit> ")
		if ctx.Err() != nil || !sc.Scan() {
			a.printf("\n")
			return sc.Err()
		}

		line := strings.ToLower(strings.TrimSpace(sc.Text()))
		switch line {
		case "":
			continue
		case "q", "quit":
			return nil
		case "n", "next":
			m.Next()
		case "p", "prev":
			m.Prev()
		case "r", "reload":
			d, err := a.api.GetItem(ctx, id)
			if err != nil {
				if errors.Is(err, domain.ErrAuthRequired) {
					return a.authFailed(err)
				}
				a.printf("Reload failed: %s\n", domain.Message(err))
				continue
			}
			if m.Sync(d.Images) {
				a.printf("Images changed.\n")
			}
			if m.Len() == 0 {
				a.printf("Image: (none)\n")
				continue
			}
		default:
			n, err := strconv.Atoi(line)
			if err != nil || !m.SelectIndex(n-1) {
				a.printf("Unknown command %q.\n", line)
				continue
			}
		}

		sel, _ := m.Selected()
		idx, _ := m.Index()
		a.printf("Image: %s\n", imageLine(m, idx, sel))
	}
}
