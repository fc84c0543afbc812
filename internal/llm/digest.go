package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/cuida-app/cuida/internal/agenda"
	"github.com/cuida-app/cuida/internal/dateutil"
	"github.com/cuida-app/cuida/internal/item"
)

const digestSystemPrompt = `You are a calm assistant helping a family caregiver plan the week of an elderly person. Output ONLY the exact format shown - no markdown, no extra text. Be brief and kind.`

const digestPromptTemplate = `Read this caregiving week and output EXACTLY this format (no markdown, no code blocks):

FOCUS: [ 2-5 word summary of the week ]

💊 MEDS: One sentence about the medication routine and anything easy to miss.
📅 BUSIEST: One sentence naming the busiest day and why.
⚠️  WATCH: One sentence about back-to-back appointments or doses close to events.

TIP:
➜  One practical preparation for the week.

Data Format:
- [E] = event, [M] = medication or procedure
- (repeats) marks a repeating item

Week:
%s

Rules:
- Write in %s
- Keep each line under 80 characters
- If nothing applies to a line, omit that line
- Output plain text only, no markdown formatting`

// Digester writes a short caregiving summary of a week.
type Digester struct {
	client Client
	locale string
}

// NewDigester creates a Digester. locale selects the reply language.
func NewDigester(client Client, locale string) *Digester {
	return &Digester{client: client, locale: locale}
}

// Summarize sends the week to the LLM and returns its plain-text digest.
func (d *Digester) Summarize(ctx context.Context, week *agenda.Week) (string, error) {
	language := "English"
	if d.locale == dateutil.LocalePortuguese {
		language = "Brazilian Portuguese"
	}

	prompt := fmt.Sprintf(digestPromptTemplate, FormatWeek(week), language)
	out, err := d.client.Chat(ctx, []Message{
		{Role: RoleSystem, Content: digestSystemPrompt},
		{Role: RoleUser, Content: prompt},
	})
	if err != nil {
		return "", fmt.Errorf("summarizing week: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// FormatWeek renders the week in the compact line format the prompts use.
func FormatWeek(week *agenda.Week) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s\n", dateutil.RangeLabel(week.Window.Start(), week.Window.End(), dateutil.LocaleEnglish))
	for i := 0; i < agenda.WindowDays; i++ {
		day := week.Day(i)
		fmt.Fprintf(&sb, "\n%s\n", dateutil.DayLabel(day.Date, dateutil.LocaleEnglish))
		if day.Len() == 0 {
			sb.WriteString("  (nothing scheduled)\n")
			continue
		}
		for _, it := range day.Items() {
			sb.WriteString("  " + formatItem(it) + "\n")
		}
	}
	return sb.String()
}

func formatItem(it item.Item) string {
	kind := "[E]"
	if it.IsMed() {
		kind = "[M]"
	}

	line := fmt.Sprintf("%s  %s  %s", it.SortTime(), kind, it.Title)
	if it.Dose != "" {
		line += " " + it.Dose
	}
	if it.Description != "" {
		line += " - " + it.Description
	}
	if it.Recurrence.Repeats() {
		line += " (repeats)"
	}
	return line
}
