// ABOUTME: Fetch command to resolve a seller's listings once and print them
// ABOUTME: Prints colored item lines, raw JSON, or a per-source diagnostic report

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harper/storefeed/internal/models"
	"github.com/harper/storefeed/internal/source"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch the seller's listings once",
	Long: `Resolve the seller's listings once and print them.

Sources are tried in priority order until one yields items.
Use --debug to try every source and show what each one returned.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		debug, _ := cmd.Flags().GetBool("debug")
		limit, _ := cmd.Flags().GetInt("limit")

		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ResolveTimeout))
		defer cancel()

		out := cmd.OutOrStdout()

		if debug {
			report := resolver.Diagnose(ctx)
			if asJSON {
				return writeJSON(out, report)
			}
			printReport(out, report)
			return nil
		}

		items := resolver.Resolve(ctx)
		if limit > 0 && len(items) > limit {
			items = items[:limit]
		}
		if asJSON {
			return writeJSON(out, map[string][]models.Item{"items": items})
		}
		printItems(out, resolver.Seller(), items)
		return nil
	},
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}

func printItems(w io.Writer, seller string, items []models.Item) {
	if len(items) == 0 {
		fmt.Fprintf(w, "No listings found for %s\n", seller)
		return
	}

	faint := color.New(color.Faint).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()

	for _, item := range items {
		fmt.Fprintf(w, "%s  %s  %s\n", faint(item.ID), formatPrice(item), item.Title)
		fmt.Fprintf(w, "    %s\n", faint(item.URL))
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s %d listing(s) for %s\n", green("v"), len(items), seller)
}

func printReport(w io.Writer, report source.Report) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	faint := color.New(color.Faint).SprintFunc()

	for _, a := range report.Tried {
		switch {
		case a.Error != "":
			fmt.Fprintf(w, "%s %-26s %s\n", red("x"), a.Strategy, a.Error)
		case a.FoundItems > 0:
			fmt.Fprintf(w, "%s %-26s %d item(s) %s\n", green("v"), a.Strategy, a.FoundItems, faint(a.Format))
		default:
			fmt.Fprintf(w, "%s %-26s no items %s\n", faint("-"), a.Strategy, faint(a.Format))
		}
		fmt.Fprintf(w, "    %s\n", faint(a.URL))
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Summary: %d source(s) tried, %d item(s) from the first working source\n", len(report.Tried), len(report.Items))
}

// formatPrice renders the price, or "?" when it is unknown
func formatPrice(item models.Item) string {
	if item.Price <= 0 {
		return fmt.Sprintf("%10s", "?")
	}
	return fmt.Sprintf("%10s", fmt.Sprintf("$%.2f", item.Price))
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.Flags().Bool("json", false, "print items as JSON")
	fetchCmd.Flags().BoolP("debug", "d", false, "try every source and report what each returned")
	fetchCmd.Flags().IntP("limit", "n", 0, "maximum number of items to print (0 = all)")
}
