package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"crypto_dash/internal/dashboard"
	"crypto_dash/internal/filter"
	"crypto_dash/internal/format"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Fetch the markets listing once and print the filtered coins",
	RunE: func(cmd *cobra.Command, args []string) error {
		patch, err := patchFromFlags(cmd)
		if err != nil {
			return err
		}

		market := bootstrap.NewMarketService()
		defer market.Stop()
		if err := market.Refetch(cmd.Context()); err != nil {
			return err
		}

		dash := dashboard.New(market)
		dash.UpdateFilters(patch)
		v := dash.View()

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintln(w, "#\tName\tSymbol\tPrice\t24h\tMarket Cap\t")
		for _, c := range v.Filtered {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t\n",
				c.MarketCapRank, c.Name, strings.ToUpper(c.Symbol),
				format.Price(c.CurrentPrice),
				format.Percentage(c.PriceChangePercentage24h),
				format.MarketCap(c.MarketCap))
		}
		if err := w.Flush(); err != nil {
			return err
		}

		s := v.Summary
		fmt.Printf("\n%d of %d coins | total market cap %s | avg 24h %s\n",
			len(v.Filtered), len(v.Coins), format.MarketCap(s.TotalMarketCap), format.Percentage(s.AverageChange))
		if s.BiggestGainer != nil {
			fmt.Printf("top gainer %s %s | top loser %s %s\n",
				strings.ToUpper(s.BiggestGainer.Symbol), format.Percentage(s.BiggestGainer.PriceChangePercentage24h),
				strings.ToUpper(s.BiggestLoser.Symbol), format.Percentage(s.BiggestLoser.PriceChangePercentage24h))
		}

		bootstrap.SyncAssets(cmd.Context(), v.Coins)
		return nil
	},
}

func patchFromFlags(cmd *cobra.Command) (filter.Patch, error) {
	var p filter.Patch
	flags := cmd.Flags()

	if flags.Changed("search") {
		s, _ := flags.GetString("search")
		p.Search = &s
	}
	if flags.Changed("bucket") {
		raw, _ := flags.GetString("bucket")
		b, err := filter.ParseBucket(raw)
		if err != nil {
			return p, fmt.Errorf("--bucket %q: %w", raw, err)
		}
		p.Bucket = &b
	}
	if flags.Changed("min") {
		v, _ := flags.GetFloat64("min")
		p.MinPrice = &v
	}
	if flags.Changed("max") {
		v, _ := flags.GetFloat64("max")
		p.MaxPrice = &v
	}
	return p, nil
}

func init() {
	listCmd.Flags().String("search", "", "case-insensitive name or symbol substring")
	listCmd.Flags().String("bucket", "all", "market cap bucket: all, top10, 11-25, 26-50")
	listCmd.Flags().Float64("min", 0, "minimum price (inclusive)")
	listCmd.Flags().Float64("max", 0, "maximum price (inclusive)")
}
