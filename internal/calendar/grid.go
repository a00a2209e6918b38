package calendar

import "time"

// GridSize is six full weeks, so every month renders at the same height.
const GridSize = 42

type GridCell struct {
	Date    DateKey      `json:"date"`
	Day     int          `json:"day"`
	Weekday time.Weekday `json:"weekday"`
	InMonth bool         `json:"in_month"`
}

// BuildMonthGrid lays out the month on a Sunday-first 6x7 grid. Cells before
// the first and after the last day are borrowed from the adjacent months.
func BuildMonthGrid(year int, month time.Month) []GridCell {
	first := NewDateKey(year, month, 1)
	leadingBlankCount := int(first.Weekday())
	daysInMonth := DaysInMonth(year, month)

	cells := make([]GridCell, 0, GridSize)

	previousMonthDays := DaysInMonth(year, month-1)
	for offset := leadingBlankCount - 1; offset >= 0; offset-- {
		cells = append(cells, newGridCell(NewDateKey(year, month-1, previousMonthDays-offset), false))
	}

	for day := 1; day <= daysInMonth; day++ {
		cells = append(cells, newGridCell(NewDateKey(year, month, day), true))
	}

	for day := 1; len(cells) < GridSize; day++ {
		cells = append(cells, newGridCell(NewDateKey(year, month+1, day), false))
	}

	return cells
}

func newGridCell(date DateKey, inMonth bool) GridCell {
	_, _, day := date.Parts()
	return GridCell{
		Date:    date,
		Day:     day,
		Weekday: date.Weekday(),
		InMonth: inMonth,
	}
}

// GridInRange reports whether the whole 42-cell grid for the month, padding
// included, stays within MinYear..MaxYear.
func GridInRange(year int, month time.Month) bool {
	if year < MinYear || year > MaxYear || month < time.January || month > time.December {
		return false
	}
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return SpanInRange(year, month, 1-int(first.Weekday()), GridSize)
}

// GridRange returns the first and last date shown on the grid.
func GridRange(cells []GridCell) (DateKey, DateKey) {
	if len(cells) == 0 {
		return "", ""
	}
	return cells[0].Date, cells[len(cells)-1].Date
}
