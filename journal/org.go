package journal

import (
	"fmt"
	"strings"
	"time"
)

// FormatCloseOrg renders a CloseRecord as an Org-mode block suitable for
// pasting into a trading journal. It purposely includes narrative
// placeholders (Thesis/Execution/Review) while keeping all structured
// facts in a PROPERTIES drawer for easy search.
func FormatCloseOrg(c CloseRecord) string {
	heading := fmt.Sprintf("** Close: %s (%s)", c.Symbol, shortID(c.PositionID))
	// Use RFC3339 for copy/paste friendliness.
	entry := c.EntryTime.UTC().Format(time.RFC3339)
	exit := c.ExitTime.UTC().Format(time.RFC3339)

	var b strings.Builder
	b.WriteString(heading)
	b.WriteString("\n")
	b.WriteString(":PROPERTIES:\n")
	b.WriteString(fmt.Sprintf(":POSITION_ID: %s\n", c.PositionID))
	b.WriteString(fmt.Sprintf(":ACCOUNT: %s\n", c.Account))
	b.WriteString(fmt.Sprintf(":SYMBOL: %s\n", c.Symbol))
	b.WriteString(fmt.Sprintf(":INTENT: %s\n", c.Intent))
	b.WriteString(fmt.Sprintf(":UNITS: %.4f\n", c.Units))
	b.WriteString(fmt.Sprintf(":ENTRY_PRICE: %.2f\n", c.EntryPrice))
	b.WriteString(fmt.Sprintf(":EXIT_PRICE: %.2f\n", c.ExitPrice))
	b.WriteString(fmt.Sprintf(":ENTRY_TIME: %s\n", entry))
	b.WriteString(fmt.Sprintf(":EXIT_TIME: %s\n", exit))
	b.WriteString(fmt.Sprintf(":REALIZED_PL: %.2f\n", c.RealizedPL))
	b.WriteString(fmt.Sprintf(":REASON: %s\n", c.Reason))
	b.WriteString(":END:\n")
	b.WriteString("\n")
	b.WriteString("*** Thesis\n- \n\n")
	b.WriteString("*** Execution\n- \n\n")
	b.WriteString("*** Review\n- \n")

	return b.String()
}

// FormatClosesOrg renders multiple closes separated by blank lines.
func FormatClosesOrg(closes []CloseRecord) string {
	var b strings.Builder
	for i, c := range closes {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(FormatCloseOrg(c))
	}
	return b.String()
}

// FormatDecisionsOrg renders a day's exit decisions as an Org-mode table.
func FormatDecisionsOrg(decisions []DecisionRecord) string {
	var b strings.Builder
	b.WriteString("| DAY | POSITION | SYMBOL | ACTION | REASON | PHASE | HELD | PEAK |\n")
	b.WriteString("|-----+----------+--------+--------+--------+-------+------+------|\n")
	for _, d := range decisions {
		b.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s | %d | %.4f |\n",
			d.Day.UTC().Format("2006-01-02"), shortID(d.PositionID), d.Symbol,
			d.Action, d.Reason, d.Phase, d.DaysHeld, d.PeakReturn))
	}
	return b.String()
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[:8]
}
