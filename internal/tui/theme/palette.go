package theme

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// Palette holds precomputed colors derived from a Theme.
type Palette struct {
	Bg          lipgloss.Color
	BgHighlight lipgloss.Color
	BgSelection lipgloss.Color
	Fg          lipgloss.Color
	FgMuted     lipgloss.Color
	Accent      lipgloss.Color
	Event       lipgloss.Color
	Med         lipgloss.Color
	Today       lipgloss.Color
	Warning     lipgloss.Color

	// Tinted backgrounds for selected items
	EventBg lipgloss.Color
	MedBg   lipgloss.Color

	TextOnAccent  lipgloss.Color
	TextOnToday   lipgloss.Color
	TextOnWarning lipgloss.Color
	TextOnEvent   lipgloss.Color
	TextOnMed     lipgloss.Color
}

// NewPalette derives a Palette from the provided Theme.
func NewPalette(t *Theme) *Palette {
	if t == nil {
		t, _ = Load(DefaultName)
	}

	light := IsLight(t.Bg)
	eventBg := tint(t.Event, t.Bg, light)
	medBg := tint(t.Med, t.Bg, light)

	return &Palette{
		Bg:          lipgloss.Color(t.Bg),
		BgHighlight: lipgloss.Color(t.BgHighlight),
		BgSelection: lipgloss.Color(t.BgSelection),
		Fg:          lipgloss.Color(t.Fg),
		FgMuted:     lipgloss.Color(t.FgMuted),
		Accent:      lipgloss.Color(t.Accent),
		Event:       lipgloss.Color(t.Event),
		Med:         lipgloss.Color(t.Med),
		Today:       lipgloss.Color(t.Today),
		Warning:     lipgloss.Color(t.Warning),

		EventBg: lipgloss.Color(eventBg),
		MedBg:   lipgloss.Color(medBg),

		TextOnAccent:  lipgloss.Color(textOn(t.Accent, t.Bg, t.Fg)),
		TextOnToday:   lipgloss.Color(textOn(t.Today, t.Bg, t.Fg)),
		TextOnWarning: lipgloss.Color(textOn(t.Warning, t.Bg, t.Fg)),
		TextOnEvent:   lipgloss.Color(textOn(eventBg, t.Bg, t.Fg)),
		TextOnMed:     lipgloss.Color(textOn(medBg, t.Bg, t.Fg)),
	}
}

// IsLight reports whether a background is light enough to need dark text.
func IsLight(bg string) bool {
	return luminance(bg) > 0.55
}

// tint mixes an accent into the background: lightly on light themes, and
// darkened on dark themes so foreground text stays readable.
func tint(accent, bg string, light bool) string {
	if light {
		return Blend(accent, bg, 0.75)
	}
	return Blend(accent, "#000000", 0.5)
}

// Blend mixes a towards b by ratio (0 keeps a, 1 gives b).
// Invalid colors return a unchanged.
func Blend(a, b string, ratio float64) string {
	ca, err := colorful.Hex(a)
	if err != nil {
		return a
	}
	cb, err := colorful.Hex(b)
	if err != nil {
		return a
	}
	ratio = min(max(ratio, 0), 1)
	return ca.BlendRgb(cb, ratio).Clamped().Hex()
}

// textOn picks whichever of two text colors contrasts more with bg.
func textOn(bg, first, second string) string {
	if contrast(bg, first) >= contrast(bg, second) {
		return first
	}
	return second
}

func contrast(a, b string) float64 {
	l1, l2 := luminance(a), luminance(b)
	if l1 < l2 {
		l1, l2 = l2, l1
	}
	return (l1 + 0.05) / (l2 + 0.05)
}

// luminance is the WCAG relative luminance; invalid colors count as black.
func luminance(hex string) float64 {
	c, err := colorful.Hex(hex)
	if err != nil {
		return 0
	}
	r, g, b := c.LinearRgb()
	return 0.2126*r + 0.7152*g + 0.0722*b
}
