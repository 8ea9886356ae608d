package cmd

import (
	"fmt"
	"strconv"

	"github.com/jfmyers9/crates/internal/output"
	"github.com/spf13/cobra"
)

var inventoryCmd = &cobra.Command{
	Use:   "inventory [username]",
	Short: "List a seller's marketplace inventory",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInventory,
}

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "List your marketplace orders",
	Args:  cobra.NoArgs,
	RunE:  runOrders,
}

var listingCmd = &cobra.Command{
	Use:   "listing <id>",
	Short: "Show a marketplace listing",
	Args:  cobra.ExactArgs(1),
	RunE:  runListing,
}

var statsCmd = &cobra.Command{
	Use:   "stats <release-id>",
	Short: "Show marketplace statistics for a release",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(inventoryCmd, ordersCmd, listingCmd, statsCmd)

	inventoryCmd.Flags().String("status", "", "Only show listings with this status (e.g. \"For Sale\")")
	addPageFlags(inventoryCmd)

	ordersCmd.Flags().String("status", "", "Only show orders with this status")
	addPageFlags(ordersCmd)

	listingCmd.Flags().String("currency", "", "Currency for the price")
	statsCmd.Flags().String("currency", "", "Currency for the lowest price")
}

func runInventory(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	username, err := a.username(usernameArg(args))
	if err != nil {
		return err
	}

	status, _ := cmd.Flags().GetString("status")
	inventory, _, err := a.client.User().GetInventory(a.ctx, username, status, pageFromFlags(cmd))
	if err != nil {
		return fmt.Errorf("failed to get inventory: %w", err)
	}

	table := &output.Table{
		Header: []string{"ID", "Release", "Condition", "Sleeve", "Price", "Status"},
		Footer: pageFooter(inventory.Pagination),
	}
	for _, l := range inventory.Listings {
		table.Rows = append(table.Rows, []string{
			strconv.Itoa(l.ID), l.Release.Description, l.Condition, l.SleeveCondition, price(l.Price), l.Status,
		})
	}
	return a.write(output.Result{Data: inventory, Table: table})
}

func runOrders(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	status, _ := cmd.Flags().GetString("status")
	orders, _, err := a.client.Marketplace().GetOrders(a.ctx, status, pageFromFlags(cmd))
	if err != nil {
		return fmt.Errorf("failed to get orders: %w", err)
	}

	table := &output.Table{
		Header: []string{"ID", "Status", "Buyer", "Items", "Total", "Created"},
		Footer: pageFooter(orders.Pagination),
	}
	for _, o := range orders.Orders {
		table.Rows = append(table.Rows, []string{
			o.ID, o.Status, o.Buyer.Username, strconv.Itoa(len(o.Items)), price(o.Total), dateOnly(o.Created),
		})
	}
	return a.write(output.Result{Data: orders, Table: table})
}

func runListing(cmd *cobra.Command, args []string) error {
	id, err := parseID("listing", args[0])
	if err != nil {
		return err
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	currency, _ := cmd.Flags().GetString("currency")
	listing, _, err := a.client.Marketplace().GetListing(a.ctx, id, currency)
	if err != nil {
		return fmt.Errorf("failed to get listing: %w", err)
	}

	return a.write(output.Result{
		Data: listing,
		Pairs: []output.Pair{
			{Label: "Release", Value: listing.Release.Description},
			{Label: "Seller", Value: listing.Seller.Username},
			{Label: "Price", Value: price(listing.Price)},
			{Label: "Condition", Value: listing.Condition},
			{Label: "Sleeve", Value: listing.SleeveCondition},
			{Label: "Ships from", Value: listing.ShipsFrom},
			{Label: "Status", Value: listing.Status},
			{Label: "Comments", Value: listing.Comments},
		},
	})
}

func runStats(cmd *cobra.Command, args []string) error {
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
	stats, _, err := a.client.Marketplace().GetReleaseStats(a.ctx, id, currency)
	if err != nil {
		return fmt.Errorf("failed to get release stats: %w", err)
	}

	lowest := "-"
	if stats.LowestPrice != nil {
		lowest = price(*stats.LowestPrice)
	}
	return a.write(output.Result{
		Data: stats,
		Pairs: []output.Pair{
			{Label: "For sale", Value: strconv.Itoa(stats.NumForSale)},
			{Label: "Lowest price", Value: lowest},
			{Label: "Blocked", Value: strconv.FormatBool(stats.Blocked)},
		},
	})
}
