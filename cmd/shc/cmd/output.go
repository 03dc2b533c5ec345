package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/donaldgifford/secondhand-client/internal/carousel"
	"github.com/donaldgifford/secondhand-client/internal/listing"
	domain "github.com/donaldgifford/secondhand-client/pkg/types"
)

// tabWriter wraps tabwriter with error tracking.
type tabWriter struct {
	*tabwriter.Writer
	err error
}

func newTabWriter(w io.Writer) *tabWriter {
	return &tabWriter{Writer: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (tw *tabWriter) writef(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.Writer, format, args...)
}

func (tw *tabWriter) finish() error {
	if tw.err != nil {
		return tw.err
	}
	return tw.Flush()
}

// pageOutput is the JSON form of a listing page.
type pageOutput struct {
	Scope      listing.Scope           `json:"scope"`
	Items      []domain.ListingSummary `json:"items"`
	Page       int                     `json:"page"`
	TotalPages int                     `json:"total_pages"`
	TotalCount int                     `json:"total_count"`
	PageSize   int                     `json:"page_size"`
}

func printPage(w io.Writer, scope listing.Scope, st listing.PageState) error {
	if jsonOutput() {
		return outputJSON(w, pageOutput{
			Scope:      scope,
			Items:      st.Items,
			Page:       st.CurrentPage,
			TotalPages: st.TotalPages,
			TotalCount: st.TotalCount,
			PageSize:   st.PageSize,
		})
	}

	if len(st.Items) == 0 {
		if _, err := fmt.Fprintln(w, "No listings found."); err != nil {
			return err
		}
	} else {
		tw := newTabWriter(w)
		tw.writef("ID\tTITLE\tPRICE\tSTATUS\tZIP\n")
		for i := range st.Items {
			it := &st.Items[i]
			tw.writef("%s\t%s\t$%s\t%s\t%s\n",
				it.ID,
				truncate(it.Title, 40),
				it.Price.StringFixed(2),
				it.Status,
				it.ZipCode,
			)
		}
		if err := tw.finish(); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "Page %d of %d (%d listings)\n", st.CurrentPage, st.TotalPages, st.TotalCount)
	return err
}

// detailOutput is the JSON form of a listing detail with its selected image.
type detailOutput struct {
	*domain.ListingDetail
	SelectedImage string `json:"selected_image,omitempty"`
	SelectedIndex *int   `json:"selected_index,omitempty"`
}

func printDetail(w io.Writer, d *domain.ListingDetail, m *carousel.Model) error {
	sel, hasSel := m.Selected()
	idx, _ := m.Index()

	if jsonOutput() {
		out := detailOutput{ListingDetail: d}
		if hasSel {
			out.SelectedImage = sel
			out.SelectedIndex = &idx
		}
		return outputJSON(w, out)
	}

	negotiable := "no"
	if d.Negotiable {
		negotiable = "yes"
	}

	tw := newTabWriter(w)
	tw.writef("ID:\t%s\n", d.ID)
	tw.writef("Title:\t%s\n", d.Title)
	tw.writef("Price:\t$%s\n", d.Price.StringFixed(2))
	tw.writef("Negotiable:\t%s\n", negotiable)
	tw.writef("Status:\t%s\n", d.Status)
	tw.writef("Seller:\t%s\n", d.OwnerName)
	tw.writef("Contact:\t%s\n", d.ContactInfo)
	tw.writef("Zip:\t%s\n", d.ZipCode)
	if !d.CreatedAt.IsZero() {
		tw.writef("Posted:\t%s\n", d.CreatedAt.Format("2006-01-02 15:04"))
	}
	tw.writef("Description:\t%s\n", d.Description)
	if hasSel {
		tw.writef("Image:\t%s\n", imageLine(m, idx, sel))
	} else {
		tw.writef("Image:\t(none)\n")
	}
	return tw.finish()
}

func imageLine(m *carousel.Model, idx int, sel string) string {
	return fmt.Sprintf("[%d/%d] %s", idx+1, m.Len(), sel)
}

func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
