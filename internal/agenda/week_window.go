package agenda

// WeekWindow keeps three consecutive weeks loaded (previous, current and
// next) so the board can move a week back or forward without waiting.
type WeekWindow struct {
	weeks [3]*Week // [0]=prev, [1]=current, [2]=next
}

// NewWeekWindow creates a cache from three consecutive weeks.
func NewWeekWindow(prev, current, next *Week) *WeekWindow {
	return &WeekWindow{
		weeks: [3]*Week{prev, current, next},
	}
}

// Current returns the focused (center) week.
func (w *WeekWindow) Current() *Week {
	return w.weeks[1]
}

// Previous returns the week before current.
func (w *WeekWindow) Previous() *Week {
	return w.weeks[0]
}

// Next returns the week after current.
func (w *WeekWindow) Next() *Week {
	return w.weeks[2]
}

// ShiftForward makes next the current week; newNext (possibly nil while it
// loads) becomes the next week.
func (w *WeekWindow) ShiftForward(newNext *Week) {
	w.weeks[0] = w.weeks[1]
	w.weeks[1] = w.weeks[2]
	w.weeks[2] = newNext
}

// ShiftBackward makes previous the current week; newPrev (possibly nil while
// it loads) becomes the previous week.
func (w *WeekWindow) ShiftBackward(newPrev *Week) {
	w.weeks[2] = w.weeks[1]
	w.weeks[1] = w.weeks[0]
	w.weeks[0] = newPrev
}

// SetCurrent replaces the current week, e.g. after a deletion.
func (w *WeekWindow) SetCurrent(week *Week) {
	w.weeks[1] = week
}

// SetNext replaces the next week after it's been loaded.
func (w *WeekWindow) SetNext(week *Week) {
	w.weeks[2] = week
}

// SetPrevious replaces the previous week after it's been loaded.
func (w *WeekWindow) SetPrevious(week *Week) {
	w.weeks[0] = week
}

// HasNext returns true if the next week is loaded.
func (w *WeekWindow) HasNext() bool {
	return w.weeks[2] != nil
}

// HasPrevious returns true if the previous week is loaded.
func (w *WeekWindow) HasPrevious() bool {
	return w.weeks[0] != nil
}

// Invalidate drops the neighbours so they are reloaded on the next move.
func (w *WeekWindow) Invalidate() {
	w.weeks[0] = nil
	w.weeks[2] = nil
}
