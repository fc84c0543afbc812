package dateutil

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Locales supported by the label helpers.
const (
	LocaleEnglish    = "en"
	LocalePortuguese = "pt-BR"
)

// PortugueseMonths lists month names in Portuguese, January first.
var PortugueseMonths = [12]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

var portugueseWeekdays = [7]string{
	"domingo", "segunda-feira", "terça-feira", "quarta-feira",
	"quinta-feira", "sexta-feira", "sábado",
}

var ptTitle = cases.Title(language.BrazilianPortuguese)

// ValidLocale reports whether locale is supported.
func ValidLocale(locale string) bool {
	return locale == LocaleEnglish || locale == LocalePortuguese
}

// DayLabel renders a long day heading, e.g. "Saturday, Sep 13" or
// "Sábado, 13 de set".
func DayLabel(key, locale string) string {
	d := Decode(key)
	if locale == LocalePortuguese {
		month := PortugueseMonths[d.Month()-1]
		return fmt.Sprintf("%s, %d de %s", ptTitle.String(portugueseWeekdays[d.Weekday()]), d.Day(), month[:3])
	}
	return d.Format("Monday, Jan 2")
}

// ShortDayLabel renders a compact column heading, e.g. "Sat 13".
func ShortDayLabel(key, locale string) string {
	d := Decode(key)
	if locale == LocalePortuguese {
		name := strings.TrimSuffix(portugueseWeekdays[d.Weekday()], "-feira")
		if len(name) > 3 {
			name = string([]rune(name)[:3])
		}
		return fmt.Sprintf("%s %d", ptTitle.String(name), d.Day())
	}
	return d.Format("Mon 2")
}

// RangeLabel renders a window heading, e.g. "Sep 13 – Sep 19, 2025".
func RangeLabel(start, end, locale string) string {
	s, e := Decode(start), Decode(end)
	if locale == LocalePortuguese {
		return fmt.Sprintf("%d %s – %d %s %d",
			s.Day(), PortugueseMonths[s.Month()-1][:3],
			e.Day(), PortugueseMonths[e.Month()-1][:3], e.Year())
	}
	return fmt.Sprintf("%s – %s", s.Format("Jan 2"), e.Format("Jan 2, 2006"))
}
