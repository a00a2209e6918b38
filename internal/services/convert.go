package services

import (
	"github.com/bdickey/b6/internal/calendar"
	"github.com/bdickey/b6/internal/models"
)

func toCalendarEvents(events []models.CalendarEvent) []calendar.OneOffEvent {
	result := make([]calendar.OneOffEvent, 0, len(events))
	for _, event := range events {
		result = append(result, calendar.OneOffEvent{
			ID:    event.ID,
			Date:  event.Date,
			Title: event.Title,
			Color: event.ColorTag,
		})
	}
	return result
}

func toCalendarFamilyEvents(events []models.FamilyEvent) []calendar.FamilyEvent {
	result := make([]calendar.FamilyEvent, 0, len(events))
	for _, event := range events {
		result = append(result, calendar.FamilyEvent{ID: event.ID, Date: event.Date, Name: event.Name})
	}
	return result
}

// toCalendarProgram attaches a structured schedule only when the row carries
// weekday names or a start time.
func toCalendarProgram(program models.Program) calendar.Program {
	converted := calendar.Program{
		ID:          program.ID,
		Name:        program.Name,
		DayTimeText: program.DayTime,
		Status:      program.Status,
	}

	var weekdays calendar.WeekdaySet
	for _, name := range program.ScheduleDays {
		if day, ok := calendar.ParseWeekday(name); ok {
			weekdays = weekdays.With(day)
		}
	}
	startTime, endTime := deref(program.StartTime), deref(program.EndTime)
	if !weekdays.Empty() || startTime != "" {
		converted.Schedule = &calendar.Schedule{Weekdays: weekdays, StartTime: startTime, EndTime: endTime}
	}
	return converted
}

func toCalendarPrograms(programs []models.Program) []calendar.Program {
	result := make([]calendar.Program, 0, len(programs))
	for _, program := range programs {
		result = append(result, toCalendarProgram(program))
	}
	return result
}

func toCalendarHolidays(holidays []models.Holiday) []calendar.Holiday {
	result := make([]calendar.Holiday, 0, len(holidays))
	for _, holiday := range holidays {
		result = append(result, calendar.Holiday{
			ID:        holiday.ID,
			Name:      holiday.Name,
			StartDate: holiday.StartDate,
			EndDate:   holiday.EndDate,
		})
	}
	return result
}

func toCalendarBookings(bookings []models.SitterBooking) []calendar.SitterBooking {
	result := make([]calendar.SitterBooking, 0, len(bookings))
	for _, booking := range bookings {
		result = append(result, calendar.SitterBooking{
			ID:         booking.ID,
			Date:       booking.Date,
			SitterID:   booking.SitterID,
			SitterName: booking.SitterName,
			Color:      booking.SitterColor,
			StartTime:  deref(booking.StartTime),
			EndTime:    deref(booking.EndTime),
		})
	}
	return result
}

func toOverrides(rows []models.TransportOverride) map[calendar.DateKey]*calendar.Override {
	overrides := make(map[calendar.DateKey]*calendar.Override, len(rows))
	for _, row := range rows {
		overrides[row.Date] = toOverride(row)
	}
	return overrides
}

func toOverride(row models.TransportOverride) *calendar.Override {
	return &calendar.Override{Date: row.Date, AM: row.AMPerson, PM: row.PMPerson}
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
