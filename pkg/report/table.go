package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/quantscan/leapscan/pkg/models"
	"github.com/quantscan/leapscan/pkg/scanner"
)

// WriteScan prints the two report tables for a scan: cheapest candidates by
// absolute implied volatility, then the largest discounts to theoretical
// value.
func WriteScan(w io.Writer, res *scanner.Result) {
	fmt.Fprintf(w, "%s @ %.2f: %d ITM call candidates", res.Symbol, res.Spot, res.Candidates)
	if res.Skipped > 0 {
		fmt.Fprintf(w, " (%d skipped)", res.Skipped)
	}
	fmt.Fprintln(w)

	if res.Candidates == 0 {
		fmt.Fprintln(w, "No options found matching criteria.")
		return
	}

	writeHeader(w, fmt.Sprintf("TOP %d CHEAPEST ITM LEAPS CALLS (Absolute IV)", len(res.ByIV)))
	writeRows(w, res.ByIV, false)

	writeHeader(w, fmt.Sprintf("TOP %d BARGAIN ITM LEAPS CALLS (Price < Theoretical)", len(res.ByDiscount)))
	if len(res.ByDiscount) == 0 {
		fmt.Fprintln(w, "No contracts trading below theoretical value.")
		return
	}
	writeRows(w, res.ByDiscount, true)
}

// Bargain is a ranked row tagged with its underlying, for reports that
// aggregate across tickers.
type Bargain struct {
	Symbol string
	models.RankedOption
}

// WriteBargains prints a cross-ticker bargain table, discount descending.
func WriteBargains(w io.Writer, bargains []Bargain) {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "SYMBOL\tEXPIRY\tSTRIKE\tLAST\tDELTA\tIV\tATM IV\tTHEO\tDISCOUNT%")
	for _, b := range bargains {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\t%.2f\t%.4f\t%.4f\t%.2f\t%.2f\n",
			b.Symbol,
			b.ExpiryString(),
			b.Strike.StringFixed(2),
			b.MarketPrice(),
			b.Delta,
			b.ImpliedVolatility,
			b.ATMIVRef,
			b.TheoreticalPrice,
			b.DiscountPct,
		)
	}
	tw.Flush()
}

func writeHeader(w io.Writer, title string) {
	rule := strings.Repeat("=", 50)
	fmt.Fprintf(w, "\n%s\n %s\n%s\n", rule, title, rule)
}

func writeRows(w io.Writer, rows []models.RankedOption, withValuation bool) {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	header := "EXPIRY\tSTRIKE\tLAST\tDELTA\tIV\tVOLUME\tOI"
	if withValuation {
		header += "\tATM IV\tTHEO\tDISCOUNT%"
	}
	fmt.Fprintln(tw, header)

	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%.2f\t%.4f\t%d\t%d",
			r.ExpiryString(),
			r.Strike.StringFixed(2),
			r.MarketPrice(),
			r.Delta,
			r.ImpliedVolatility,
			r.Volume,
			r.OpenInterest,
		)
		if withValuation {
			fmt.Fprintf(tw, "\t%.4f\t%.2f\t%.2f", r.ATMIVRef, r.TheoreticalPrice, r.DiscountPct)
		}
		fmt.Fprintln(tw)
	}
	tw.Flush()
}
