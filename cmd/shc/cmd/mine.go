package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/secondhand-client/internal/listing"
	"github.com/donaldgifford/secondhand-client/internal/mutation"
	domain "github.com/donaldgifford/secondhand-client/pkg/types"
)

func mineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mine",
		Short: "Manage your own listings",
	}

	cmd.AddCommand(
		mineListCmd(),
		mineSoldCmd(),
		mineEditCmd(),
		mineDeleteCmd(),
	)

	return cmd
}

func mineListCmd() *cobra.Command {
	var (
		page        int
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your listings, including sold ones",
		Example: `  shc mine list
  shc mine list --page 2 --output json
  shc mine list -i`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			if err := a.requireLogin(); err != nil {
				return err
			}

			coord, err := a.coordinator(listing.ScopeMine)
			if err != nil {
				return err
			}
			if err := coord.FetchPage(cmd.Context(), page); err != nil {
				return a.authFailed(err)
			}
			if err := printPage(a.out, listing.ScopeMine, coord.Snapshot()); err != nil {
				return err
			}
			if interactive {
				return a.pageThrough(cmd.Context(), coord)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "page number (1-based)")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "page through your listings with commands read from stdin")

	return cmd
}

// mutationFlags are shared by the commands that change one of your listings.
type mutationFlags struct {
	page int
	yes  bool
}

func (f *mutationFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.page, "page", 1, "page of your listings the listing is on")
	cmd.Flags().BoolVarP(&f.yes, "yes", "y", false, "confirm without prompting")
}

func mineSoldCmd() *cobra.Command {
	var flags mutationFlags

	cmd := &cobra.Command{
		Use:     "sold <id>",
		Short:   "Mark one of your listings as sold",
		Example: `  shc mine sold 42`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMutation(cmd, args[0], mutation.KindMarkSold, flags, nil)
		},
	}

	flags.register(cmd)

	return cmd
}

func mineDeleteCmd() *cobra.Command {
	var flags mutationFlags

	cmd := &cobra.Command{
		Use:     "delete <id>",
		Short:   "Delete one of your listings",
		Example: `  shc mine delete 42 --yes`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMutation(cmd, args[0], mutation.KindDelete, flags, nil)
		},
	}

	flags.register(cmd)

	return cmd
}

func mineEditCmd() *cobra.Command {
	var (
		flags mutationFlags
		edit  mutation.EditInput
	)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change the title, price or description of one of your listings",
		Long: "Change the title, price or description of one of your listings.\n" +
			"Fields you do not pass keep their current values.",
		Example: `  shc mine edit 42 --price 35
  shc mine edit 42 --title "Road bike, 54cm" --description "New tyres"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			changed := func(in *mutation.EditInput, d *domain.ListingDetail) {
				*in = mutation.EditInput{
					Title:       d.Title,
					Price:       d.Price.String(),
					Description: d.Description,
				}
				fs := cmd.Flags()
				if fs.Changed("title") {
					in.Title = edit.Title
				}
				if fs.Changed("price") {
					in.Price = edit.Price
				}
				if fs.Changed("description") {
					in.Description = edit.Description
				}
			}
			return runMutation(cmd, args[0], mutation.KindEdit, flags, changed)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&edit.Title, "title", "", "new title")
	cmd.Flags().StringVar(&edit.Price, "price", "", "new price")
	cmd.Flags().StringVar(&edit.Description, "description", "", "new description")

	return cmd
}

// runMutation stages kind against listing id, asks for confirmation and
// dispatches it. For edits, fill builds the working copy from the current
// listing detail.
func runMutation(
	cmd *cobra.Command,
	id string,
	kind mutation.Kind,
	flags mutationFlags,
	fill func(*mutation.EditInput, *domain.ListingDetail),
) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	if err := a.requireLogin(); err != nil {
		return err
	}
	ctx := cmd.Context()

	coord, err := a.coordinator(listing.ScopeMine)
	if err != nil {
		return err
	}
	if err := coord.FetchPage(ctx, flags.page); err != nil {
		return a.authFailed(err)
	}

	var (
		coll   mutation.Collection
		target domain.ListingSummary
		detail *domain.ListingDetail
	)
	snap := coord.Snapshot()
	if it, found := snap.Find(id); found {
		coll, target = coord, it
	}
	if target.ID == "" || kind == mutation.KindEdit {
		if detail, err = a.api.GetItem(ctx, id); err != nil {
			return a.authFailed(fmt.Errorf("loading listing %s: %w", id, err))
		}
		if target.ID == "" {
			target = detail.ListingSummary
		}
	}

	var edit *mutation.EditInput
	if kind == mutation.KindEdit {
		edit = &mutation.EditInput{}
		fill(edit, detail)
	}

	intent, err := a.pipeline().Stage(coll, target, kind, edit)
	if err != nil {
		return err
	}

	question := describe(intent)
	for {
		confirmed := flags.yes
		if !confirmed {
			if confirmed, err = promptConfirm(a.in, a.out, question); err != nil {
				return err
			}
		}
		if !confirmed {
			if err := intent.Cancel(); err != nil {
				return err
			}
			a.printf("Cancelled.\n")
			return nil
		}

		err := intent.Confirm(ctx)
		if err == nil {
			break
		}
		if flags.yes || errors.Is(err, domain.ErrAuthRequired) || errors.Is(err, domain.ErrValidation) {
			return a.authFailed(err)
		}
		a.printf("Failed: %s\n", domain.Message(err))
		question = "Retry?"
	}

	a.printf("%s\n", applied(intent))
	if coll == nil {
		return nil
	}
	return printPage(a.out, listing.ScopeMine, coord.Snapshot())
}

func describe(in *mutation.Intent) string {
	t := in.Target()
	switch in.Kind() {
	case mutation.KindMarkSold:
		return fmt.Sprintf("Mark %q (%s) as sold?", t.Title, t.ID)
	case mutation.KindDelete:
		return fmt.Sprintf("Delete %q (%s)? This cannot be undone.", t.Title, t.ID)
	default:
		e := in.Edit()
		return fmt.Sprintf("Update %s to title %q, price %s?", t.ID, e.Title, e.Price)
	}
}

func applied(in *mutation.Intent) string {
	switch in.Kind() {
	case mutation.KindMarkSold:
		return "Listing marked as sold."
	case mutation.KindDelete:
		return "Listing deleted."
	default:
		return "Listing updated."
	}
}
