package cmd

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/secondhand-client/internal/mutation"
	domain "github.com/donaldgifford/secondhand-client/pkg/types"
)

func sellCmd() *cobra.Command {
	var (
		draft  mutation.Draft
		images []string
	)

	cmd := &cobra.Command{
		Use:   "sell",
		Short: "Publish a new listing",
		Long: "Publish a new listing. Title, contact, zip, price and at least one\n" +
			"image are required; the draft is checked locally before upload.",
		Example: `  shc sell --title "Desk lamp" --price 15 --contact me@example.com \
    --zip 94105 --image front.jpg --image side.jpg --negotiable`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			if err := a.requireLogin(); err != nil {
				return err
			}

			files, err := readImages(images, a.cfg.Upload.MaxImageBytes)
			if err != nil {
				return err
			}
			draft.Images = files

			if err := a.pipeline().Publish(cmd.Context(), &draft); err != nil {
				return a.authFailed(err)
			}
			a.printf("Published %q with %d image(s).\n", draft.Title, len(files))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&draft.Title, "title", "", "listing title")
	f.StringVar(&draft.Description, "description", "", "listing description")
	f.StringVar(&draft.ContactInfo, "contact", "", "how buyers reach you")
	f.StringVar(&draft.Price, "price", "", "asking price")
	f.BoolVar(&draft.Negotiable, "negotiable", false, "price is negotiable")
	f.StringVar(&draft.ZipCode, "zip", "", "zip code of the item")
	f.StringArrayVar(&images, "image", nil, "image file to upload (repeatable)")

	return cmd
}

// readImages loads image files for upload. Files over maxBytes are rejected
// before they are read.
func readImages(paths []string, maxBytes int64) ([]domain.ImageFile, error) {
	out := make([]domain.ImageFile, 0, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("reading image: %w", err)
		}
		if maxBytes > 0 && info.Size() > maxBytes {
			return nil, domain.Invalid("images", fmt.Sprintf("%s is larger than %d bytes", filepath.Base(p), maxBytes))
		}

		data, err := os.ReadFile(p) //nolint:gosec // path from CLI flag
		if err != nil {
			return nil, fmt.Errorf("reading image: %w", err)
		}
		out = append(out, domain.ImageFile{
			Filename:    filepath.Base(p),
			ContentType: mime.TypeByExtension(filepath.Ext(p)),
			Data:        data,
		})
	}
	return out, nil
}
