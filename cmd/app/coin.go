package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"crypto_dash/internal/chart"
	"crypto_dash/internal/format"
)

var coinCmd = &cobra.Command{
	Use:   "coin [id]",
	Short: "Print details and price history of a coin",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		state := bootstrap.NewDetailService().Load(cmd.Context(), args[0])
		if !state.Found() {
			return fmt.Errorf("coin %q not found: %s", args[0], state.Error)
		}

		c := state.Coin
		md := c.MarketData
		fmt.Printf("%s (%s)  rank #%d\n", c.Name, strings.ToUpper(c.Symbol), c.MarketCapRank)
		fmt.Printf("  Price       %s  %s\n", format.Price(md.CurrentPrice.USD), format.Percentage(md.PriceChangePercentage24h))
		fmt.Printf("  24h range   %s - %s\n", format.Price(md.Low24h.USD), format.Price(md.High24h.USD))
		fmt.Printf("  Market cap  %s\n", format.MarketCap(md.MarketCap.USD))
		fmt.Printf("  Volume      %s\n", format.MarketCap(md.TotalVolume.USD))
		fmt.Printf("  ATH         %s (%s)\n", format.Price(md.ATH.USD), dateOnly(md.ATHDate.USD))
		fmt.Printf("  ATL         %s (%s)\n", format.Price(md.ATL.USD), dateOnly(md.ATLDate.USD))
		fmt.Printf("  Circulating %s\n", format.Supply(md.CirculatingSupply, c.Symbol))
		if md.MaxSupply != nil {
			fmt.Printf("  Max supply  %s\n", format.Supply(*md.MaxSupply, c.Symbol))
		}
		if home := c.Homepage(); home != "" {
			fmt.Printf("  Homepage    %s\n", home)
		}

		if desc := format.Description(c.Description.En, format.DefaultSentences); desc != "" {
			fmt.Printf("\n%s\n", desc)
		}

		if state.HistoryError != "" {
			fmt.Printf("\nPrice history unavailable: %s\n", state.HistoryError)
			return nil
		}
		points := chart.PriceHistory(state.History)
		if r, ok := chart.HistoryRange(points); ok {
			fmt.Printf("\n%d-day history: low %s  high %s  change %s (%d samples, %s to %s)\n",
				bootstrap.Config.API.CoinGecko.HistoryDays,
				format.Price(r.Min), format.Price(r.Max), format.Percentage(r.Change()),
				len(points), points[0].Date, points[len(points)-1].Date)
		}
		return nil
	},
}

// dateOnly trims an RFC 3339 timestamp to its date.
func dateOnly(ts string) string {
	if len(ts) >= 10 {
		return ts[:10]
	}
	return ts
}
