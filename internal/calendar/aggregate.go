package calendar

import "strings"

type SourceKind string

const (
	KindHoliday       SourceKind = "holiday"
	KindEvent         SourceKind = "event"
	KindFamilyEvent   SourceKind = "family_event"
	KindProgram       SourceKind = "program"
	KindSitterBooking SourceKind = "sitter_booking"
)

type ColorTag string

const (
	ColorDefault ColorTag = "default"
	ColorRed     ColorTag = "red"
	ColorGold    ColorTag = "gold"

	// Fixed colours for the sources that do not choose their own.
	ColorFamily  ColorTag = "family"
	ColorProgram ColorTag = "program"
	ColorHoliday ColorTag = "holiday"
)

// NormalizeColorTag maps anything outside {default, red, gold} to default.
func NormalizeColorTag(tag string) ColorTag {
	switch ColorTag(strings.ToLower(strings.TrimSpace(tag))) {
	case ColorRed:
		return ColorRed
	case ColorGold:
		return ColorGold
	default:
		return ColorDefault
	}
}

type ProgramStatus string

const (
	ProgramConsider ProgramStatus = "consider"
	ProgramWaitlist ProgramStatus = "waitlist"
	ProgramEnrolled ProgramStatus = "enrolled"
)

// NextStatus cycles consider -> waitlist -> enrolled -> consider.
func (status ProgramStatus) NextStatus() ProgramStatus {
	switch status {
	case ProgramConsider:
		return ProgramWaitlist
	case ProgramWaitlist:
		return ProgramEnrolled
	default:
		return ProgramConsider
	}
}

func (status ProgramStatus) Valid() bool {
	switch status {
	case ProgramConsider, ProgramWaitlist, ProgramEnrolled:
		return true
	}
	return false
}

type OneOffEvent struct {
	ID    string
	Date  DateKey
	Title string
	Color ColorTag
}

type FamilyEvent struct {
	ID   string
	Date DateKey
	Name string
}

// Schedule is the structured alternative to a free-text day/time descriptor.
type Schedule struct {
	Weekdays  WeekdaySet
	StartTime string
	EndTime   string
}

type Program struct {
	ID          string
	Name        string
	DayTimeText string
	Status      ProgramStatus
	Schedule    *Schedule
}

// Visible reports whether the program shows on the calendar at all.
func (program Program) Visible() bool {
	return program.Status == ProgramEnrolled || program.Status == ProgramWaitlist
}

// Weekdays prefers structured weekdays and falls back to scanning the text.
func (program Program) Weekdays() WeekdaySet {
	if program.Schedule != nil && !program.Schedule.Weekdays.Empty() {
		return program.Schedule.Weekdays
	}
	return MatchedWeekdays(program.DayTimeText)
}

func (program Program) TimeHint() string {
	if program.Schedule != nil && program.Schedule.StartTime != "" {
		return joinTimes(program.Schedule.StartTime, program.Schedule.EndTime)
	}
	return TimeHint(program.DayTimeText)
}

type Holiday struct {
	ID        string
	Name      string
	StartDate DateKey
	EndDate   DateKey
}

type SitterBooking struct {
	ID         string
	Date       DateKey
	SitterID   string
	SitterName string
	Color      string
	StartTime  string
	EndTime    string
}

// Sources holds the already-fetched rows for a range. Any slice may be empty
// when its source failed to load.
type Sources struct {
	Events       []OneOffEvent
	FamilyEvents []FamilyEvent
	Programs     []Program
	Holidays     []Holiday
	Bookings     []SitterBooking
}

type Item struct {
	ID       string     `json:"id"`
	Title    string     `json:"title"`
	Kind     SourceKind `json:"kind"`
	Color    ColorTag   `json:"color"`
	TimeHint string     `json:"time_hint,omitempty"`
}

type Day struct {
	Date      DateKey `json:"date"`
	OnHoliday bool    `json:"on_holiday"`
	Items     []Item  `json:"items"`
}

// Aggregate merges the sources into one bucket per date in [start, end].
// Within a day the order is holidays, one-off events, family events,
// programs, then sitter bookings; each source keeps its input order.
func Aggregate(start, end DateKey, sources Sources) map[DateKey]Day {
	eventsByDate := make(map[DateKey][]Item)
	for _, event := range sources.Events {
		eventsByDate[event.Date] = append(eventsByDate[event.Date], Item{
			ID:    event.ID,
			Title: event.Title,
			Kind:  KindEvent,
			Color: NormalizeColorTag(string(event.Color)),
		})
	}

	familyByDate := make(map[DateKey][]Item)
	for _, event := range sources.FamilyEvents {
		familyByDate[event.Date] = append(familyByDate[event.Date], Item{
			ID:    event.ID,
			Title: event.Name,
			Kind:  KindFamilyEvent,
			Color: ColorFamily,
		})
	}

	bookingsByDate := make(map[DateKey][]Item)
	for _, booking := range sources.Bookings {
		bookingsByDate[booking.Date] = append(bookingsByDate[booking.Date], bookingItem(booking))
	}

	type visibleProgram struct {
		program  Program
		weekdays WeekdaySet
	}
	var programs []visibleProgram
	for _, program := range sources.Programs {
		if !program.Visible() {
			continue
		}
		programs = append(programs, visibleProgram{program: program, weekdays: program.Weekdays()})
	}

	days := make(map[DateKey]Day)
	for _, date := range Dates(start, end) {
		day := Day{Date: date, Items: make([]Item, 0)}

		for _, holiday := range sources.Holidays {
			if !date.InRange(holiday.StartDate, holiday.EndDate) {
				continue
			}
			day.OnHoliday = true
			day.Items = append(day.Items, Item{
				ID:    holiday.ID,
				Title: holiday.Name,
				Kind:  KindHoliday,
				Color: ColorHoliday,
			})
		}

		day.Items = append(day.Items, eventsByDate[date]...)
		day.Items = append(day.Items, familyByDate[date]...)

		weekday := date.Weekday()
		for _, visible := range programs {
			if !visible.weekdays.Has(weekday) {
				continue
			}
			day.Items = append(day.Items, Item{
				ID:       visible.program.ID,
				Title:    visible.program.Name,
				Kind:     KindProgram,
				Color:    ColorProgram,
				TimeHint: visible.program.TimeHint(),
			})
		}

		day.Items = append(day.Items, bookingsByDate[date]...)
		days[date] = day
	}

	return days
}

func bookingItem(booking SitterBooking) Item {
	title := booking.SitterName
	if title == "" {
		title = "Sitter"
	}
	color := ColorTag(booking.Color)
	if color == "" {
		color = ColorDefault
	}
	return Item{
		ID:       booking.ID,
		Title:    title,
		Kind:     KindSitterBooking,
		Color:    color,
		TimeHint: joinTimes(booking.StartTime, booking.EndTime),
	}
}

func joinTimes(start, end string) string {
	switch {
	case start != "" && end != "":
		return start + "–" + end
	case start != "":
		return start
	default:
		return end
	}
}
