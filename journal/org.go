package journal

import (
	"fmt"
	"strings"
	"time"
)

// FormatEventOrg renders an event as an Org-mode block suitable for pasting
// into a trading journal. Facts go in the PROPERTIES drawer; close events get
// narrative placeholders for review.
func FormatEventOrg(e Event) string {
	heading := fmt.Sprintf("** %s: %s %s (%s)", e.Action, e.Strategy, e.Side, shortID(e.ID))
	if e.Action == Death {
		heading = fmt.Sprintf("** DEATH (%s)", shortID(e.ID))
	}

	var b strings.Builder
	b.WriteString(heading)
	b.WriteString("\n")
	b.WriteString(":PROPERTIES:\n")
	fmt.Fprintf(&b, ":ID: %s\n", e.ID)
	fmt.Fprintf(&b, ":TIME: %s\n", e.Time.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, ":ACTION: %s\n", e.Action)
	if e.Strategy != "" {
		fmt.Fprintf(&b, ":STRATEGY: %s\n", e.Strategy)
	}
	if e.Side != "" {
		fmt.Fprintf(&b, ":SIDE: %s\n", e.Side)
	}
	if e.Price != 0 {
		fmt.Fprintf(&b, ":PRICE: %.2f\n", e.Price)
	}
	if e.Action.IsClose() {
		fmt.Fprintf(&b, ":ENTRY: %.2f\n", e.Entry)
		fmt.Fprintf(&b, ":PNL_PCT: %.2f\n", e.PnLPercent)
	}
	if e.Action == Open {
		fmt.Fprintf(&b, ":QTY: %.6f\n", e.Quantity)
		fmt.Fprintf(&b, ":SIZE: %.2f\n", e.Size)
		fmt.Fprintf(&b, ":ADAPTIVE: %t\n", e.Adaptive)
	}
	fmt.Fprintf(&b, ":CASH: %.2f\n", e.Cash)
	fmt.Fprintf(&b, ":PORTFOLIO: %.2f\n", e.Portfolio)
	if e.Reason != "" {
		fmt.Fprintf(&b, ":REASON: %s\n", e.Reason)
	}
	b.WriteString(":END:\n")

	if e.Action.IsClose() {
		b.WriteString("\n")
		b.WriteString("*** Thesis\n- \n\n")
		b.WriteString("*** Execution\n- \n\n")
		b.WriteString("*** Review\n- \n")
	}
	return b.String()
}

// FormatEventsOrg renders multiple events separated by blank lines.
func FormatEventsOrg(events []Event) string {
	var b strings.Builder
	for i, e := range events {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(FormatEventOrg(e))
	}
	return b.String()
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[:8]
}
