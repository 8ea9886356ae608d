package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jfmyers9/crates/pkg/discogs"
	"github.com/spf13/cobra"
)

// addPageFlags registers the pagination flags of a list command.
func addPageFlags(cmd *cobra.Command) {
	cmd.Flags().Int("page", 1, "Page number")
	cmd.Flags().Int("per-page", 50, "Items per page (max 100)")
	cmd.Flags().String("sort", "", "Sort key")
	cmd.Flags().String("sort-order", "", "Sort order (asc, desc)")
}

// pageFromFlags reads the flags registered by addPageFlags.
func pageFromFlags(cmd *cobra.Command) *discogs.Pagination {
	page, _ := cmd.Flags().GetInt("page")
	perPage, _ := cmd.Flags().GetInt("per-page")
	sort, _ := cmd.Flags().GetString("sort")
	sortOrder, _ := cmd.Flags().GetString("sort-order")
	return &discogs.Pagination{Page: page, PerPage: perPage, Sort: sort, SortOrder: sortOrder}
}

// parseID parses a numeric Discogs ID argument.
func parseID(kind, arg string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s ID %q", kind, arg)
	}
	return id, nil
}

// pageFooter summarizes a pagination block, e.g. "page 1 of 4 (187 items)".
func pageFooter(p discogs.Page) string {
	return fmt.Sprintf("page %d of %d (%d items)", p.Page, p.Pages, p.Items)
}

// artistNames joins artist credits the way Discogs displays them.
func artistNames(artists []discogs.ArtistCredit) string {
	var b strings.Builder
	for i, a := range artists {
		name := a.Name
		if a.ANV != "" {
			name = a.ANV
		}
		b.WriteString(name)
		if i < len(artists)-1 {
			join := strings.TrimSpace(a.Join)
			switch join {
			case "", ",":
				b.WriteString(join + " ")
			default:
				b.WriteString(" " + join + " ")
			}
		}
	}
	return b.String()
}

func labelNames(labels []discogs.LabelCredit) string {
	names := make([]string, 0, len(labels))
	for _, l := range labels {
		if l.CatNo != "" {
			names = append(names, l.Name+" – "+l.CatNo)
		} else {
			names = append(names, l.Name)
		}
	}
	return strings.Join(names, ", ")
}

func formatNames(formats []discogs.Format) string {
	names := make([]string, 0, len(formats))
	for _, f := range formats {
		name := f.Name
		if len(f.Descriptions) > 0 {
			name += " (" + strings.Join(f.Descriptions, ", ") + ")"
		}
		names = append(names, name)
	}
	return strings.Join(names, ", ")
}

// year renders a year, leaving unknown years blank.
func year(y int) string {
	if y == 0 {
		return ""
	}
	return strconv.Itoa(y)
}

func price(p discogs.Price) string {
	return fmt.Sprintf("%.2f %s", p.Value, p.Currency)
}
