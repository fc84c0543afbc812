// Package item defines the scheduled items shown on the agenda.
package item

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cuida-app/cuida/internal/dateutil"
)

// Domain errors.
var (
	ErrItemNotFound       = errors.New("item not found")
	ErrInvalidKind        = errors.New("kind must be 'event' or 'med'")
	ErrInvalidFrequency   = errors.New("invalid frequency unit")
	ErrDoseOnlyForMed     = errors.New("dose only applies to medication/procedure items")
	ErrInvalidTimeFormat  = errors.New("time must be in HH:MM format")
	ErrEmptyTitle         = errors.New("title cannot be empty")
	ErrInvalidDateFormat  = dateutil.ErrInvalidDateFormat
	ErrRepetitionRequired = errors.New("repeated items need a frequency of at least 1")
)

// Kind tags an item as a plain event or a medication/procedure reminder.
type Kind string

const (
	KindEvent Kind = "event"
	KindMed   Kind = "med"
)

// ParseKind accepts the canonical names plus a few aliases.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "event", "evento", "":
		return KindEvent, nil
	case "med", "medication", "procedure", "remedio", "remédio":
		return KindMed, nil
	default:
		return "", ErrInvalidKind
	}
}

// Label returns a short human label for the kind.
func (k Kind) Label() string {
	if k == KindMed {
		return "Medication"
	}
	return "Event"
}

// FrequencyUnit is the repetition unit understood by the remote service.
type FrequencyUnit string

const (
	FrequencyDaily     FrequencyUnit = "DAILY"
	FrequencyWeekly    FrequencyUnit = "WEEKLY"
	FrequencyMonthly   FrequencyUnit = "MONTHLY"
	FrequencyQuarterly FrequencyUnit = "QUARTERLY"
	FrequencyYearly    FrequencyUnit = "YEARLY"
	FrequencyUnique    FrequencyUnit = "UNIQUE"
)

// ParseFrequencyUnit parses a unit name case-insensitively. Empty means UNIQUE.
func ParseFrequencyUnit(s string) (FrequencyUnit, error) {
	u := FrequencyUnit(strings.ToUpper(strings.TrimSpace(s)))
	if u == "" {
		return FrequencyUnique, nil
	}
	switch u {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyQuarterly, FrequencyYearly, FrequencyUnique:
		return u, nil
	default:
		return "", ErrInvalidFrequency
	}
}

// Recurrence describes how often an item repeats.
// A nil Recurrence, or one with unit UNIQUE, means the item happens once.
type Recurrence struct {
	Frequency int           `json:"frequency"`
	Unit      FrequencyUnit `json:"frequencyUnit"`
}

// Repeats reports whether r describes a repeating item.
func (r *Recurrence) Repeats() bool {
	return r != nil && r.Unit != "" && r.Unit != FrequencyUnique && r.Frequency > 0
}

// Item is a single agenda entry.
type Item struct {
	ID          string      `json:"id"`
	Kind        Kind        `json:"type"`
	Title       string      `json:"title"`
	Date        string      `json:"date"`           // YYYY-MM-DD, local calendar
	Time        string      `json:"time,omitempty"` // HH:MM, empty means start of day
	Description string      `json:"description,omitempty"`
	Dose        string      `json:"dose,omitempty"` // only for KindMed
	Recurrence  *Recurrence `json:"recurrence,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// New builds and validates an item from a form submission.
// A new UUID is assigned when the form has no ID.
func New(f Form) (*Item, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	kind, _ := ParseKind(f.Kind)
	unit, _ := ParseFrequencyUnit(f.FrequencyUnit)

	id := strings.TrimSpace(f.ID)
	if id == "" {
		id = NewID()
	}

	it := &Item{
		ID:          id,
		Kind:        kind,
		Title:       strings.TrimSpace(f.Title),
		Date:        strings.TrimSpace(f.Date),
		Time:        strings.TrimSpace(f.Time),
		Description: strings.TrimSpace(f.Description),
		CreatedAt:   time.Now(),
	}
	if kind == KindMed {
		it.Dose = strings.TrimSpace(f.Dose)
	}
	if f.Repeated && unit != FrequencyUnique {
		it.Recurrence = &Recurrence{Frequency: f.Frequency, Unit: unit}
	}
	return it, nil
}

// NewID returns a fresh opaque item identifier.
func NewID() string {
	return uuid.NewString()
}

// IsMed returns true if the item is a medication/procedure reminder.
func (it *Item) IsMed() bool {
	return it.Kind == KindMed
}

// SortTime returns the item's time, or "00:00" when it has none.
func (it *Item) SortTime() string {
	if it.Time == "" {
		return "00:00"
	}
	return it.Time
}

// StartsAt composes the item's date and time into a local instant.
func (it *Item) StartsAt() time.Time {
	d := dateutil.Decode(it.Date)
	hour, minute := TimeToMinutes(it.SortTime())/60, TimeToMinutes(it.SortTime())%60
	return time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, time.Local)
}

// Occurrence returns a copy of the item placed on another date.
func (it *Item) Occurrence(date string) Item {
	c := *it
	c.Date = date
	return c
}
