package export

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/vanderheijden86/widgetboard/pkg/chart"
	"github.com/vanderheijden86/widgetboard/pkg/model"
)

// GenerateMarkdown creates a report with one section per category and one
// table per card.
func GenerateMarkdown(d model.Dashboard, title string) string {
	return generateMarkdown(d, title, time.Now())
}

func generateMarkdown(d model.Dashboard, title string, now time.Time) string {
	var sb strings.Builder
	if strings.TrimSpace(title) == "" {
		title = "Dashboard"
	}

	sb.WriteString(fmt.Sprintf("# %s\n\n", title))
	sb.WriteString(fmt.Sprintf("*Generated: %s*\n\n", now.Format(time.RFC1123)))

	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Category | Cards |\n|----------|-------|\n")
	for _, cc := range d.Categories {
		sb.WriteString(fmt.Sprintf("| %s | %d |\n", escapeCell(string(cc.Category)), len(cc.Cards)))
	}
	sb.WriteString(fmt.Sprintf("| **Total** | %d |\n\n", d.CardCount()))

	for _, cc := range d.Categories {
		sb.WriteString(fmt.Sprintf("## %s\n\n", cc.Category))
		if len(cc.Cards) == 0 {
			sb.WriteString("*No cards.*\n\n")
			continue
		}
		for _, card := range cc.Cards {
			writeCardSection(&sb, card)
		}
	}
	return sb.String()
}

func writeCardSection(sb *strings.Builder, card model.Card) {
	data := chart.Derive(card)
	sb.WriteString(fmt.Sprintf("### %s\n\n", card.Name))
	sb.WriteString(fmt.Sprintf("*%s · %s*\n\n", card.ChartType.Label(), card.ID))
	if data.Len() == 0 {
		sb.WriteString("*No fields.*\n\n")
		return
	}

	shares := data.Shares()
	sb.WriteString("| Field | Color | Percentage |")
	if card.ChartType == model.ChartPie {
		sb.WriteString(" Share |\n|-------|-------|------------|-------|\n")
	} else {
		sb.WriteString("\n|-------|-------|------------|\n")
	}
	for i := range data.Values {
		sb.WriteString(fmt.Sprintf("| %s | `%s` | %s |",
			escapeCell(data.Labels[i]),
			escapeCell(data.Colors[i]),
			strconv.FormatFloat(data.Values[i], 'f', -1, 64)))
		if card.ChartType == model.ChartPie {
			sb.WriteString(fmt.Sprintf(" %.1f%% |", shares[i]*100))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
}
