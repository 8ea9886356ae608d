package cmd

import (
	"fmt"
	"strconv"

	"github.com/jfmyers9/crates/internal/output"
	"github.com/jfmyers9/crates/pkg/discogs"
	"github.com/spf13/cobra"
)

var profileCmd = &cobra.Command{
	Use:   "profile [username]",
	Short: "Show a user's profile",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runProfile,
}

var collectionCmd = &cobra.Command{
	Use:   "collection [username]",
	Short: "List a user's collection",
	Long: `List the releases in a user's collection.

Without a username the configured or authenticated user is used. Folder 0
holds every release; other folders are private to their owner.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCollection,
}

var wantlistCmd = &cobra.Command{
	Use:   "wantlist",
	Short: "Manage your wantlist",
}

var wantlistListCmd = &cobra.Command{
	Use:   "list [username]",
	Short: "List a user's wantlist",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runWantlistList,
}

var wantlistAddCmd = &cobra.Command{
	Use:   "add <release-id>",
	Short: "Add a release to your wantlist",
	Args:  cobra.ExactArgs(1),
	RunE:  runWantlistAdd,
}

var wantlistRemoveCmd = &cobra.Command{
	Use:   "remove <release-id>",
	Short: "Remove a release from your wantlist",
	Args:  cobra.ExactArgs(1),
	RunE:  runWantlistRemove,
}

func init() {
	rootCmd.AddCommand(profileCmd, collectionCmd, wantlistCmd)
	wantlistCmd.AddCommand(wantlistListCmd, wantlistAddCmd, wantlistRemoveCmd)

	collectionCmd.Flags().Int("folder", 0, "Folder ID (0 lists every release)")
	collectionCmd.Flags().Bool("folders", false, "List folders instead of releases")
	collectionCmd.Flags().Bool("value", false, "Show the estimated collection value instead")
	addPageFlags(collectionCmd)

	addPageFlags(wantlistListCmd)

	wantlistAddCmd.Flags().String("notes", "", "Notes for the entry")
	wantlistAddCmd.Flags().Int("rating", 0, "Rating from 1 to 5")
}

func usernameArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}

func runProfile(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	username, err := a.username(usernameArg(args))
	if err != nil {
		return err
	}

	profile, _, err := a.client.User().GetProfile(a.ctx, username)
	if err != nil {
		return fmt.Errorf("failed to get profile: %w", err)
	}
	return a.write(output.Result{
		Data: profile,
		Pairs: []output.Pair{
			{Label: "Username", Value: profile.Username},
			{Label: "Name", Value: profile.Name},
			{Label: "Location", Value: profile.Location},
			{Label: "Registered", Value: profile.Registered},
			{Label: "Collection", Value: strconv.Itoa(profile.NumCollection)},
			{Label: "Wantlist", Value: strconv.Itoa(profile.NumWantlist)},
			{Label: "For sale", Value: strconv.Itoa(profile.NumForSale)},
			{Label: "Seller rating", Value: fmt.Sprintf("%.1f%%", profile.SellerRating)},
		},
	})
}

func runCollection(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	username, err := a.username(usernameArg(args))
	if err != nil {
		return err
	}
	collection := a.client.User().Collection()

	if value, _ := cmd.Flags().GetBool("value"); value {
		v, _, err := collection.GetValue(a.ctx, username)
		if err != nil {
			return fmt.Errorf("failed to get collection value: %w", err)
		}
		return a.write(output.Result{
			Data: v,
			Pairs: []output.Pair{
				{Label: "Minimum", Value: v.Minimum},
				{Label: "Median", Value: v.Median},
				{Label: "Maximum", Value: v.Maximum},
			},
		})
	}

	if folders, _ := cmd.Flags().GetBool("folders"); folders {
		list, _, err := collection.GetFolders(a.ctx, username)
		if err != nil {
			return fmt.Errorf("failed to get folders: %w", err)
		}
		table := &output.Table{Header: []string{"ID", "Name", "Count"}}
		for _, f := range list.Folders {
			table.Rows = append(table.Rows, []string{strconv.Itoa(f.ID), f.Name, strconv.Itoa(f.Count)})
		}
		return a.write(output.Result{Data: list, Table: table})
	}

	folder, _ := cmd.Flags().GetInt("folder")
	items, _, err := collection.GetReleases(a.ctx, username, folder, pageFromFlags(cmd))
	if err != nil {
		return fmt.Errorf("failed to get collection: %w", err)
	}

	table := &output.Table{
		Header: []string{"ID", "Artist", "Title", "Year", "Format", "Added"},
		Footer: pageFooter(items.Pagination),
	}
	for _, item := range items.Releases {
		info := item.BasicInformation
		table.Rows = append(table.Rows, []string{
			strconv.Itoa(item.ID), artistNames(info.Artists), info.Title, year(info.Year),
			formatNames(info.Formats), dateOnly(item.DateAdded),
		})
	}
	return a.write(output.Result{Data: items, Table: table})
}

func runWantlistList(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	username, err := a.username(usernameArg(args))
	if err != nil {
		return err
	}

	wants, _, err := a.client.User().Wantlist().GetReleases(a.ctx, username, pageFromFlags(cmd))
	if err != nil {
		return fmt.Errorf("failed to get wantlist: %w", err)
	}

	table := &output.Table{
		Header: []string{"ID", "Artist", "Title", "Year", "Notes"},
		Footer: pageFooter(wants.Pagination),
	}
	for _, w := range wants.Wants {
		info := w.BasicInformation
		table.Rows = append(table.Rows, []string{
			strconv.Itoa(w.ID), artistNames(info.Artists), info.Title, year(info.Year), w.Notes,
		})
	}
	return a.write(output.Result{Data: wants, Table: table})
}

func runWantlistAdd(cmd *cobra.Command, args []string) error {
	releaseID, err := parseID("release", args[0])
	if err != nil {
		return err
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	username, err := a.username("")
	if err != nil {
		return err
	}

	var edit *discogs.WantEdit
	notes, _ := cmd.Flags().GetString("notes")
	rating, _ := cmd.Flags().GetInt("rating")
	if notes != "" || rating != 0 {
		edit = &discogs.WantEdit{Notes: notes, Rating: rating}
	}

	want, _, err := a.client.User().Wantlist().AddRelease(a.ctx, username, releaseID, edit)
	if err != nil {
		return fmt.Errorf("failed to add release to wantlist: %w", err)
	}

	info := want.BasicInformation
	fmt.Fprintf(cmd.ErrOrStderr(), "✓ Added %s - %s to %s's wantlist\n", artistNames(info.Artists), info.Title, username)
	return a.write(output.Result{Data: want, Pairs: []output.Pair{
		{Label: "ID", Value: strconv.Itoa(want.ID)},
		{Label: "Title", Value: info.Title},
		{Label: "Notes", Value: want.Notes},
	}})
}

func runWantlistRemove(cmd *cobra.Command, args []string) error {
	releaseID, err := parseID("release", args[0])
	if err != nil {
		return err
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	username, err := a.username("")
	if err != nil {
		return err
	}

	if _, err := a.client.User().Wantlist().RemoveRelease(a.ctx, username, releaseID); err != nil {
		return fmt.Errorf("failed to remove release from wantlist: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed release %d from %s's wantlist\n", releaseID, username)
	return nil
}

// dateOnly trims a Discogs timestamp to its date.
func dateOnly(ts string) string {
	if len(ts) >= 10 {
		return ts[:10]
	}
	return ts
}
