// Package calexport writes a loaded week as an iCalendar feed.
package calexport

import (
	"fmt"
	"io"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/cuida-app/cuida/internal/agenda"
	"github.com/cuida-app/cuida/internal/item"
)

const productID = "-//cuida//agenda//EN"

// DefaultDuration is the length given to timed entries, which carry no end.
const DefaultDuration = 30 * time.Minute

// Build converts every item of the week into a VEVENT. Repeating items were
// already expanded by the loader, so each occurrence gets its own UID.
func Build(week *agenda.Week, now time.Time) *ics.Calendar {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)
	cal.SetXWRCalName(fmt.Sprintf("cuida %s..%s", week.Window.Start(), week.Window.End()))

	for _, it := range week.AllItems() {
		addEvent(cal, it, now)
	}
	return cal
}

// Write serializes the week to w.
func Write(w io.Writer, week *agenda.Week, now time.Time) error {
	if _, err := io.WriteString(w, Build(week, now).Serialize()); err != nil {
		return fmt.Errorf("writing calendar: %w", err)
	}
	return nil
}

// UID returns the identifier of one occurrence of it.
func UID(it item.Item) string {
	if it.Recurrence.Repeats() {
		return fmt.Sprintf("%s-%s@cuida", it.ID, strings.ReplaceAll(it.Date, "-", ""))
	}
	return it.ID + "@cuida"
}

func addEvent(cal *ics.Calendar, it item.Item, now time.Time) {
	ev := cal.AddEvent(UID(it))
	ev.SetDtStampTime(now)
	if !it.CreatedAt.IsZero() {
		ev.SetCreatedTime(it.CreatedAt)
	}

	ev.SetSummary(summary(it))
	if desc := description(it); desc != "" {
		ev.SetDescription(desc)
	}

	start := it.StartsAt()
	if it.Time == "" {
		ev.SetAllDayStartAt(start)
		ev.SetAllDayEndAt(start.AddDate(0, 0, 1))
		return
	}
	ev.SetStartAt(start)
	ev.SetEndAt(start.Add(DefaultDuration))
}

func summary(it item.Item) string {
	if it.IsMed() && it.Dose != "" {
		return it.Title + " (" + it.Dose + ")"
	}
	return it.Title
}

func description(it item.Item) string {
	parts := make([]string, 0, 2)
	if it.Description != "" {
		parts = append(parts, it.Description)
	}
	if it.IsMed() {
		parts = append(parts, item.KindMed.Label())
	}
	return strings.Join(parts, "\n")
}
