package remote

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/cuida-app/cuida/internal/dateutil"
	"github.com/cuida-app/cuida/internal/debuglog"
	"github.com/cuida-app/cuida/internal/item"
	"github.com/cuida-app/cuida/internal/validation"
)

// titleSeparator joins title and description in the task description field.
const titleSeparator = ": "

// defaultClock is used when a date string has no usable time.
const defaultClock = "00:00"

// ptMonths maps lower-case Portuguese month names to month numbers.
var ptMonths = func() map[string]time.Month {
	m := make(map[string]time.Month, 13)
	for i, name := range dateutil.PortugueseMonths {
		m[name] = time.Month(i + 1)
	}
	m["marco"] = time.March
	return m
}()

// taskRecord is one entry of the grouped task payload.
type taskRecord struct {
	ID          json.RawMessage `json:"id"`
	Description string          `json:"description"`
	Date        string          `json:"date"`
}

// ParsePtDateStr parses "<day> de <month> - <HH:MM>" into a date key and a
// clock time. The text carries no year, so fallbackYear is used. A missing or
// malformed time yields "00:00". ok is false when the day or month cannot be
// parsed or the day does not exist in that month.
func ParsePtDateStr(s string, fallbackYear int) (date, clock string, ok bool) {
	datePart, timePart, _ := strings.Cut(s, " - ")

	var fields []string
	for _, f := range strings.Fields(datePart) {
		if strings.EqualFold(f, "de") {
			continue
		}
		fields = append(fields, f)
	}
	if len(fields) < 2 {
		return "", "", false
	}

	day, err := strconv.Atoi(fields[0])
	if err != nil {
		return "", "", false
	}
	month, found := ptMonths[strings.ToLower(fields[1])]
	if !found {
		return "", "", false
	}
	if day < 1 || day > daysIn(month, fallbackYear) {
		return "", "", false
	}

	clock = strings.TrimSpace(timePart)
	if !validation.ValidClock(clock) {
		clock = defaultClock
	}
	return fmt.Sprintf("%04d-%02d-%02d", fallbackYear, month, day), clock, true
}

// FormatPtDate renders a date key and optional clock the way the service does,
// e.g. "13 de setembro - 14:00".
func FormatPtDate(key, clock string) string {
	d := dateutil.Decode(key)
	s := fmt.Sprintf("%d de %s", d.Day(), dateutil.PortugueseMonths[d.Month()-1])
	if clock != "" {
		s += " - " + clock
	}
	return s
}

func daysIn(m time.Month, year int) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Normalize adapts a grouped task payload into event items. The payload maps
// arbitrary group names to lists of records; a bare list is accepted too.
// Records that fail to decode, or whose date does not parse, are skipped.
// An empty or invalid body yields no items. Duplicate ids keep the first record.
func Normalize(payload []byte, fallbackYear int) []item.Item {
	records := decodeRecords(payload)

	items := make([]item.Item, 0, len(records))
	seen := make(map[string]bool, len(records))
	for _, raw := range records {
		var rec taskRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			debuglog.Error("normalize record", err)
			continue
		}
		it, ok := normalizeRecord(rec, fallbackYear)
		if !ok {
			debuglog.Log("NORMALIZE_SKIP", map[string]any{"date": rec.Date})
			continue
		}
		if seen[it.ID] {
			continue
		}
		seen[it.ID] = true
		items = append(items, it)
	}
	return items
}

// decodeRecords flattens the payload groups in key order. A group that is
// not a list is skipped; the other groups survive.
func decodeRecords(payload []byte) []json.RawMessage {
	if len(strings.TrimSpace(string(payload))) == 0 {
		return nil
	}

	var groups map[string]json.RawMessage
	if err := json.Unmarshal(payload, &groups); err == nil {
		keys := make([]string, 0, len(groups))
		for k := range groups {
			keys = append(keys, k)
		}
		slices.Sort(keys)

		var out []json.RawMessage
		for _, k := range keys {
			var group []json.RawMessage
			if err := json.Unmarshal(groups[k], &group); err != nil {
				debuglog.Log("NORMALIZE_SKIP_GROUP", map[string]any{"group": k, "error": err.Error()})
				continue
			}
			out = append(out, group...)
		}
		return out
	}

	var list []json.RawMessage
	if err := json.Unmarshal(payload, &list); err == nil {
		return list
	}

	debuglog.Log("NORMALIZE_INVALID", map[string]any{"bytes": len(payload)})
	return nil
}

func normalizeRecord(rec taskRecord, fallbackYear int) (item.Item, bool) {
	date, clock, ok := ParsePtDateStr(rec.Date, fallbackYear)
	if !ok {
		return item.Item{}, false
	}

	id := idString(rec.ID)
	title, desc := splitDescription(rec.Description)
	if id == "" {
		id = item.NewID()
	}
	if title == "" {
		title = id
	}

	return item.Item{
		ID:          id,
		Kind:        item.KindEvent,
		Title:       title,
		Date:        date,
		Time:        clock,
		Description: desc,
	}, true
}

// splitDescription recovers the title from "<title>: <description>".
func splitDescription(s string) (title, desc string) {
	s = strings.TrimSpace(s)
	if t, d, found := strings.Cut(s, titleSeparator); found {
		return strings.TrimSpace(t), strings.TrimSpace(d)
	}
	return strings.TrimSuffix(s, ":"), ""
}
