package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jfmyers9/crates/internal/output"
	"github.com/jfmyers9/crates/pkg/discogs"
	"github.com/spf13/cobra"
)

var artistCmd = &cobra.Command{
	Use:   "artist <id>",
	Short: "Show an artist",
	Args:  cobra.ExactArgs(1),
	RunE:  runArtist,
}

var releaseCmd = &cobra.Command{
	Use:   "release <id>",
	Short: "Show a release",
	Long: `Show a release with its tracklist.

Prices are shown in the currency given by --currency, or the authenticated
user's currency when omitted.`,
	Args: cobra.ExactArgs(1),
	RunE: runRelease,
}

var masterCmd = &cobra.Command{
	Use:   "master <id>",
	Short: "Show a master release",
	Args:  cobra.ExactArgs(1),
	RunE:  runMaster,
}

var labelCmd = &cobra.Command{
	Use:   "label <id>",
	Short: "Show a label",
	Args:  cobra.ExactArgs(1),
	RunE:  runLabel,
}

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the Discogs database",
	Long: `Search the Discogs database.

Searching requires authentication; run 'crates auth' first.

Examples:
  crates search "blue monday"
  crates search --type master --artist "new order"
  crates search --barcode 5016027601457`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(artistCmd, releaseCmd, masterCmd, labelCmd, searchCmd)

	artistCmd.Flags().Bool("releases", false, "List the artist's releases instead")
	addPageFlags(artistCmd)

	releaseCmd.Flags().String("currency", "", "Currency for marketplace prices (e.g. USD, EUR)")

	masterCmd.Flags().Bool("versions", false, "List the master's versions instead")
	addPageFlags(masterCmd)

	labelCmd.Flags().Bool("releases", false, "List the label's releases instead")
	addPageFlags(labelCmd)

	searchCmd.Flags().String("type", "", "Result type (release, master, artist, label)")
	searchCmd.Flags().String("title", "", "Search by combined \"artist - title\"")
	searchCmd.Flags().String("artist", "", "Search by artist name")
	searchCmd.Flags().String("label", "", "Search by label")
	searchCmd.Flags().String("genre", "", "Search by genre")
	searchCmd.Flags().String("style", "", "Search by style")
	searchCmd.Flags().String("country", "", "Search by country")
	searchCmd.Flags().String("year", "", "Search by release year")
	searchCmd.Flags().String("format", "", "Search by format")
	searchCmd.Flags().String("catno", "", "Search by catalog number")
	searchCmd.Flags().String("barcode", "", "Search by barcode")
	addPageFlags(searchCmd)
}

func runArtist(cmd *cobra.Command, args []string) error {
	id, err := parseID("artist", args[0])
	if err != nil {
		return err
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if releases, _ := cmd.Flags().GetBool("releases"); releases {
		list, _, err := a.client.Database().GetArtistReleases(a.ctx, id, pageFromFlags(cmd))
		if err != nil {
			return fmt.Errorf("failed to get artist releases: %w", err)
		}
		table := &output.Table{
			Header: []string{"ID", "Type", "Year", "Artist", "Title", "Role"},
			Footer: pageFooter(list.Pagination),
		}
		for _, r := range list.Releases {
			table.Rows = append(table.Rows, []string{
				strconv.Itoa(r.ID), r.Type, year(r.Year), r.Artist, r.Title, r.Role,
			})
		}
		return a.write(output.Result{Data: list, Table: table})
	}

	artist, _, err := a.client.Database().GetArtist(a.ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get artist: %w", err)
	}
	return a.write(output.Result{
		Data: artist,
		Pairs: []output.Pair{
			{Label: "Name", Value: artist.Name},
			{Label: "Real name", Value: artist.RealName},
			{Label: "Variations", Value: strings.Join(artist.NameVariations, ", ")},
			{Label: "Profile", Value: artist.Profile},
			{Label: "URL", Value: artist.URI},
		},
	})
}

func runRelease(cmd *cobra.Command, args []string) error {
	id, err := parseID("release", args[0])
	if err != nil {
		return err
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	currency, _ := cmd.Flags().GetString("currency")
	release, _, err := a.client.Database().GetRelease(a.ctx, id, currency)
	if err != nil {
		return fmt.Errorf("failed to get release: %w", err)
	}

	pairs := []output.Pair{
		{Label: "Title", Value: release.Title},
		{Label: "Artist", Value: artistNames(release.Artists)},
		{Label: "Label", Value: labelNames(release.Labels)},
		{Label: "Format", Value: formatNames(release.Formats)},
		{Label: "Country", Value: release.Country},
		{Label: "Released", Value: release.Released},
		{Label: "Genre", Value: strings.Join(release.Genres, ", ")},
		{Label: "Style", Value: strings.Join(release.Styles, ", ")},
		{Label: "Rating", Value: fmt.Sprintf("%.2f (%d votes)", release.Community.Rating.Average, release.Community.Rating.Count)},
		{Label: "Have/Want", Value: fmt.Sprintf("%d/%d", release.Community.Have, release.Community.Want)},
	}
	if release.NumForSale > 0 {
		pairs = append(pairs, output.Pair{
			Label: "For sale",
			Value: fmt.Sprintf("%d from %.2f", release.NumForSale, release.LowestPrice),
		})
	}
	pairs = append(pairs, output.Pair{Label: "URL", Value: release.URI})

	table := &output.Table{Header: []string{"#", "Title", "Duration"}}
	for _, t := range release.Tracklist {
		table.Rows = append(table.Rows, []string{t.Position, t.Title, t.Duration})
	}

	return a.write(output.Result{Data: release, Pairs: pairs, Table: table})
}

func runMaster(cmd *cobra.Command, args []string) error {
	id, err := parseID("master", args[0])
	if err != nil {
		return err
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if versions, _ := cmd.Flags().GetBool("versions"); versions {
		list, _, err := a.client.Database().GetMasterVersions(a.ctx, id, pageFromFlags(cmd))
		if err != nil {
			return fmt.Errorf("failed to get master versions: %w", err)
		}
		table := &output.Table{
			Header: []string{"ID", "Title", "Label", "Cat#", "Country", "Released", "Format"},
			Footer: pageFooter(list.Pagination),
		}
		for _, v := range list.Versions {
			table.Rows = append(table.Rows, []string{
				strconv.Itoa(v.ID), v.Title, v.Label, v.CatNo, v.Country, v.Released, v.Format,
			})
		}
		return a.write(output.Result{Data: list, Table: table})
	}

	master, _, err := a.client.Database().GetMaster(a.ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get master: %w", err)
	}

	table := &output.Table{Header: []string{"#", "Title", "Duration"}}
	for _, t := range master.Tracklist {
		table.Rows = append(table.Rows, []string{t.Position, t.Title, t.Duration})
	}

	return a.write(output.Result{
		Data: master,
		Pairs: []output.Pair{
			{Label: "Title", Value: master.Title},
			{Label: "Artist", Value: artistNames(master.Artists)},
			{Label: "Year", Value: year(master.Year)},
			{Label: "Genre", Value: strings.Join(master.Genres, ", ")},
			{Label: "Style", Value: strings.Join(master.Styles, ", ")},
			{Label: "Main release", Value: strconv.Itoa(master.MainRelease)},
			{Label: "For sale", Value: strconv.Itoa(master.NumForSale)},
		},
		Table: table,
	})
}

func runLabel(cmd *cobra.Command, args []string) error {
	id, err := parseID("label", args[0])
	if err != nil {
		return err
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if releases, _ := cmd.Flags().GetBool("releases"); releases {
		list, _, err := a.client.Database().GetLabelReleases(a.ctx, id, pageFromFlags(cmd))
		if err != nil {
			return fmt.Errorf("failed to get label releases: %w", err)
		}
		table := &output.Table{
			Header: []string{"ID", "Cat#", "Year", "Artist", "Title", "Format"},
			Footer: pageFooter(list.Pagination),
		}
		for _, r := range list.Releases {
			table.Rows = append(table.Rows, []string{
				strconv.Itoa(r.ID), r.CatNo, year(r.Year), r.Artist, r.Title, r.Format,
			})
		}
		return a.write(output.Result{Data: list, Table: table})
	}

	label, _, err := a.client.Database().GetLabel(a.ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get label: %w", err)
	}
	return a.write(output.Result{
		Data: label,
		Pairs: []output.Pair{
			{Label: "Name", Value: label.Name},
			{Label: "Profile", Value: label.Profile},
			{Label: "Contact", Value: label.ContactInfo},
			{Label: "Links", Value: strings.Join(label.URLs, ", ")},
		},
	})
}

func runSearch(cmd *cobra.Command, args []string) error {
	params := discogs.SearchParams{}
	if len(args) > 0 {
		params.Query = args[0]
	}
	flags := map[string]*string{
		"type":    &params.Type,
		"title":   &params.Title,
		"artist":  &params.Artist,
		"label":   &params.Label,
		"genre":   &params.Genre,
		"style":   &params.Style,
		"country": &params.Country,
		"year":    &params.Year,
		"format":  &params.Format,
		"catno":   &params.CatNo,
		"barcode": &params.Barcode,
	}
	for name, dst := range flags {
		*dst, _ = cmd.Flags().GetString(name)
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	results, _, err := a.client.Database().Search(a.ctx, params, pageFromFlags(cmd))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	table := &output.Table{
		Header: []string{"ID", "Type", "Title", "Year", "Country", "Format", "Cat#"},
		Footer: pageFooter(results.Pagination),
	}
	for _, r := range results.Results {
		table.Rows = append(table.Rows, []string{
			strconv.Itoa(r.ID), r.Type, r.Title, r.Year, r.Country, strings.Join(r.Format, ", "), r.CatNo,
		})
	}
	return a.write(output.Result{Data: results, Table: table})
}
