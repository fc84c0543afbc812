package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cuida-app/cuida/internal/dateutil"
	"github.com/cuida-app/cuida/internal/item"
)

const draftPromptTemplate = `You turn a caregiver's note into one agenda item. Return JSON only.

Today: %s (%s)
Tomorrow: %s

Already scheduled this week:
%s

Note: "%s"

Rules:
- "type" is "med" for medication, dose or care procedure, otherwise "event".
- "date" is YYYY-MM-DD; resolve "today", "tomorrow" and weekday names from the dates above.
- "time" is HH:MM (24-hour) or "" when the note gives none.
- "dose" only for "med", e.g. "500mg" or "2 drops".
- "frequency_unit" is one of DAILY, WEEKLY, MONTHLY, QUARTERLY, YEARLY, UNIQUE.
- "frequency" is 0 when the unit is UNIQUE, otherwise how many units between repeats.

JSON schema:
{
  "type": "event" or "med",
  "title": "string",
  "date": "YYYY-MM-DD",
  "time": "HH:MM",
  "description": "string",
  "dose": "string",
  "frequency": 0,
  "frequency_unit": "UNIQUE"
}`

// DraftRequest is the input of Assistant.Draft.
type DraftRequest struct {
	Input    string
	Now      time.Time
	Existing []item.Item
}

// Draft is the item proposed by the LLM, before validation.
type Draft struct {
	Type          string `json:"type"`
	Title         string `json:"title"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	Description   string `json:"description"`
	Dose          string `json:"dose"`
	Frequency     int    `json:"frequency"`
	FrequencyUnit string `json:"frequency_unit"`
}

// Assistant drafts agenda items from free text.
type Assistant struct {
	client Client
}

// NewAssistant creates a new Assistant with the given LLM client.
func NewAssistant(client Client) *Assistant {
	return &Assistant{client: client}
}

// Draft asks the LLM to structure req.Input.
func (a *Assistant) Draft(ctx context.Context, req DraftRequest) (*Draft, error) {
	if strings.TrimSpace(req.Input) == "" {
		return nil, errors.New("empty note")
	}

	var d Draft
	if err := a.client.ChatJSON(ctx, a.buildMessages(req), &d); err != nil {
		return nil, fmt.Errorf("getting draft from LLM: %w", err)
	}
	return &d, nil
}

func (a *Assistant) buildMessages(req DraftRequest) []Message {
	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}
	today := dateutil.Encode(now)

	existing := "(none)"
	if len(req.Existing) > 0 {
		lines := make([]string, 0, len(req.Existing))
		for _, it := range req.Existing {
			lines = append(lines, fmt.Sprintf("- %s %s", it.Date, formatItem(it)))
		}
		existing = strings.Join(lines, "\n")
	}

	prompt := fmt.Sprintf(draftPromptTemplate,
		today, now.Weekday(),
		dateutil.AddDays(today, 1),
		existing,
		req.Input,
	)
	return []Message{{Role: RoleUser, Content: prompt}}
}

// Form converts the draft into an item form. Relative or missing dates are
// resolved against now; an unknown date falls back to today.
func (d Draft) Form(now time.Time) item.Form {
	date := strings.TrimSpace(d.Date)
	if !dateutil.ValidKey(date) {
		resolved, err := dateutil.ParseRelativeDate(date, now)
		if err != nil {
			resolved = dateutil.Encode(now)
		}
		date = resolved
	}

	unit := strings.ToUpper(strings.TrimSpace(d.FrequencyUnit))
	repeated := unit != "" && unit != string(item.FrequencyUnique) && d.Frequency > 0

	f := item.Form{
		Kind:          d.Type,
		Title:         d.Title,
		Date:          date,
		Time:          strings.TrimSpace(d.Time),
		Description:   d.Description,
		Repeated:      repeated,
		Frequency:     d.Frequency,
		FrequencyUnit: unit,
	}
	if kind, err := item.ParseKind(d.Type); err == nil && kind == item.KindMed {
		f.Dose = d.Dose
	}
	if !repeated {
		f.Frequency = 0
	}
	return f
}
