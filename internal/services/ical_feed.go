package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	"github.com/bdickey/b6/internal/calendar"
	"github.com/bdickey/b6/internal/models"
	"github.com/bdickey/b6/internal/repository"
)

const feedDomain = "household-calendar"

var rruleWeekdays = [7]rrule.Weekday{rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA}

type FeedRepositories struct {
	Events       repository.EventRepository
	FamilyEvents repository.FamilyEventRepository
	Programs     repository.ProgramRepository
	Holidays     repository.HolidayRepository
	Bookings     repository.BookingRepository
	Settings     repository.SettingsRepository
}

// FeedService publishes every calendar source as a subscribable iCal feed.
type FeedService struct {
	repositories FeedRepositories
	now          func() time.Time
}

func NewFeedService(repositories FeedRepositories) *FeedService {
	return &FeedService{repositories: repositories, now: time.Now}
}

func (service *FeedService) Build(ctx context.Context) (string, error) {
	name := "Family"
	if household, err := service.repositories.Settings.Get(ctx, repository.SettingHouseholdName); err == nil && household != "" {
		name = household
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(fmt.Sprintf("-//%s//%s//EN", name, feedDomain))
	cal.SetXWRCalName(name + " Calendar")

	stamp := service.now().UTC()

	events, err := service.repositories.Events.FindAll(ctx)
	if err != nil {
		return "", fmt.Errorf("finding events for ical: %w", err)
	}
	for _, event := range events {
		addAllDay(cal, "event-"+event.ID, event.Title, event.Notes, event.Date, event.Date, stamp)
	}

	familyEvents, err := service.repositories.FamilyEvents.FindAll(ctx)
	if err != nil {
		slog.Error("finding family events for ical", "error", err)
	}
	for _, event := range familyEvents {
		description := event.Notes
		if event.Who != "" {
			description = "Who: " + event.Who + "\n" + description
		}
		addAllDay(cal, "family-"+event.ID, event.Name, description, event.Date, event.Date, stamp)
	}

	holidays, err := service.repositories.Holidays.FindAll(ctx)
	if err != nil {
		slog.Error("finding holidays for ical", "error", err)
	}
	for _, holiday := range holidays {
		addAllDay(cal, "holiday-"+holiday.ID, holiday.Name, "", holiday.StartDate, holiday.EndDate, stamp)
	}

	bookings, err := service.repositories.Bookings.FindAll(ctx)
	if err != nil {
		slog.Error("finding bookings for ical", "error", err)
	}
	for _, booking := range bookings {
		addAllDay(cal, "booking-"+booking.ID, bookingSummary(booking), string(booking.Status), booking.Date, booking.Date, stamp)
	}

	programs, err := service.repositories.Programs.FindAll(ctx)
	if err != nil {
		slog.Error("finding programs for ical", "error", err)
	}
	for _, program := range programs {
		if err := addProgram(cal, program, stamp); err != nil {
			slog.Error("adding program to ical", "program", program.ID, "error", err)
		}
	}

	return cal.Serialize(), nil
}

// addAllDay writes an event covering [start, end] inclusive. DTEND is
// exclusive in iCal, so it is the day after end.
func addAllDay(cal *ical.Calendar, uid, summary, description string, start, end calendar.DateKey, stamp time.Time) *ical.VEvent {
	event := cal.AddEvent(uid + "@" + feedDomain)
	event.SetSummary(summary)
	if description != "" {
		event.SetDescription(description)
	}
	event.SetAllDayStartAt(start.Time())
	event.SetAllDayEndAt(end.AddDays(1).Time())
	event.SetDtStampTime(stamp)
	return event
}

func bookingSummary(booking models.SitterBooking) string {
	name := booking.SitterName
	if name == "" {
		name = "Sitter"
	}
	start, end := deref(booking.StartTime), deref(booking.EndTime)
	switch {
	case start != "" && end != "":
		return fmt.Sprintf("%s (%s–%s)", name, start, end)
	case start != "":
		return fmt.Sprintf("%s (%s)", name, start)
	}
	return name
}

// ProgramRule returns the weekly rule for a program and its first occurrence
// on or after anchor. ok is false when the program has no weekdays.
func ProgramRule(program calendar.Program, anchor calendar.DateKey) (rule *rrule.RRule, first calendar.DateKey, ok bool, err error) {
	weekdays := program.Weekdays().Days()
	if len(weekdays) == 0 {
		return nil, "", false, nil
	}

	byDay := make([]rrule.Weekday, 0, len(weekdays))
	for _, day := range weekdays {
		byDay = append(byDay, rruleWeekdays[day])
	}

	rule, err = rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Byweekday: byDay,
		Dtstart:   anchor.Time(),
	})
	if err != nil {
		return nil, "", false, fmt.Errorf("building weekly rule: %w", err)
	}

	next := rule.After(anchor.Time(), true)
	if next.IsZero() {
		return nil, "", false, nil
	}
	return rule, calendar.DateKeyFromTime(next.UTC()), true, nil
}

// addProgram publishes calendar-visible programs as one all-day weekly
// recurring event, anchored on the day the program was added.
func addProgram(cal *ical.Calendar, program models.Program, stamp time.Time) error {
	converted := toCalendarProgram(program)
	if !converted.Visible() {
		return nil
	}

	anchor := calendar.DateKeyFromTime(program.CreatedAt.UTC())
	rule, first, ok, err := ProgramRule(converted, anchor)
	if err != nil || !ok {
		return err
	}

	summary := program.Name
	if hint := converted.TimeHint(); hint != "" {
		summary += " " + hint
	}
	description := program.Location
	if program.Status == calendar.ProgramWaitlist {
		description = "Waitlisted\n" + description
	}

	event := addAllDay(cal, "program-"+program.ID, summary, description, first, first, stamp)
	event.SetProperty(ical.ComponentPropertyRrule, rule.OrigOptions.RRuleString())
	return nil
}
