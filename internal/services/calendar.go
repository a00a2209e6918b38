package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bdickey/b6/internal/calendar"
	"github.com/bdickey/b6/internal/metrics"
	"github.com/bdickey/b6/internal/models"
	"github.com/bdickey/b6/internal/repository"
)

var (
	ErrInvalidMonth = errors.New("month must be between 1 and 12")
	ErrInvalidYear  = errors.New("dates must fall between years 0001 and 9999")
)

const (
	SourceEvents       = "events"
	SourceFamilyEvents = "family_events"
	SourcePrograms     = "programs"
	SourceHolidays     = "holidays"
	SourceBookings     = "bookings"
	SourceTransport    = "transport"
	SourceCarpool      = "carpool"
)

// CalendarRepositories are the read sides the calendar views are built from.
type CalendarRepositories struct {
	Events       repository.EventRepository
	FamilyEvents repository.FamilyEventRepository
	Programs     repository.ProgramRepository
	Holidays     repository.HolidayRepository
	Bookings     repository.BookingRepository
	Transport    repository.TransportRepository
	Settings     repository.SettingsRepository
}

type CalendarService struct {
	repositories CalendarRepositories
	location     *time.Location
	now          func() time.Time
}

func NewCalendarService(repositories CalendarRepositories, location *time.Location) *CalendarService {
	if location == nil {
		location = time.Local
	}
	return &CalendarService{repositories: repositories, location: location, now: time.Now}
}

// Cell is one square of a rendered grid or week row.
type Cell struct {
	calendar.GridCell
	IsToday   bool                 `json:"is_today"`
	OnHoliday bool                 `json:"on_holiday"`
	Items     []calendar.Item      `json:"items"`
	Transport *calendar.Assignment `json:"transport,omitempty"`
}

type MonthView struct {
	Year          int              `json:"year"`
	Month         time.Month       `json:"month"`
	Today         calendar.DateKey `json:"today"`
	Cells         []Cell           `json:"cells"`
	FailedSources []string         `json:"failed_sources,omitempty"`
}

type WeekView struct {
	Start         calendar.DateKey `json:"start"`
	End           calendar.DateKey `json:"end"`
	Today         calendar.DateKey `json:"today"`
	Days          []Cell           `json:"days"`
	FailedSources []string         `json:"failed_sources,omitempty"`
}

// Today is the calendar day in the configured household timezone.
func (service *CalendarService) Today() calendar.DateKey {
	return calendar.DateKeyFromTime(service.now().In(service.location))
}

// Month builds the 42-cell grid. Items and transport are only filled for
// in-month cells; padding cells stay empty.
func (service *CalendarService) Month(ctx context.Context, year int, month time.Month) (MonthView, error) {
	if month < time.January || month > time.December {
		return MonthView{}, fmt.Errorf("building month %d-%d: %w", year, month, ErrInvalidMonth)
	}
	if !calendar.GridInRange(year, month) {
		return MonthView{}, fmt.Errorf("building month %d-%02d: %w", year, month, ErrInvalidYear)
	}

	start, end := calendar.MonthRange(year, month)
	fetched, err := service.fetch(ctx, start, end)
	if err != nil {
		return MonthView{}, fmt.Errorf("building month %d-%02d: %w", year, month, err)
	}

	days := calendar.Aggregate(start, end, fetched.sources)
	today := service.Today()

	grid := calendar.BuildMonthGrid(year, month)
	cells := make([]Cell, 0, len(grid))
	for _, gridCell := range grid {
		cell := Cell{GridCell: gridCell, IsToday: gridCell.Date == today, Items: []calendar.Item{}}
		if gridCell.InMonth {
			fetched.fill(&cell, days[gridCell.Date])
		}
		cells = append(cells, cell)
	}

	metrics.ViewBuilt("month")
	return MonthView{Year: year, Month: month, Today: today, Cells: cells, FailedSources: fetched.failed}, nil
}

// Week builds the Sunday-first week containing date.
func (service *CalendarService) Week(ctx context.Context, date calendar.DateKey) (WeekView, error) {
	date, err := calendar.ParseDateKey(string(date))
	if err != nil {
		return WeekView{}, err
	}
	year, month, day := date.Parts()
	if !calendar.SpanInRange(year, month, day-int(date.Weekday()), 7) {
		return WeekView{}, fmt.Errorf("building week of %s: %w", date, ErrInvalidYear)
	}

	start := calendar.WeekStart(date)
	end := start.AddDays(6)
	fetched, err := service.fetch(ctx, start, end)
	if err != nil {
		return WeekView{}, fmt.Errorf("building week of %s: %w", start, err)
	}

	days := calendar.Aggregate(start, end, fetched.sources)
	today := service.Today()

	cells := make([]Cell, 0, 7)
	for _, day := range calendar.Dates(start, end) {
		_, _, dayOfMonth := day.Parts()
		cell := Cell{
			GridCell: calendar.GridCell{Date: day, Day: dayOfMonth, Weekday: day.Weekday(), InMonth: true},
			IsToday:  day == today,
			Items:    []calendar.Item{},
		}
		fetched.fill(&cell, days[day])
		cells = append(cells, cell)
	}

	metrics.ViewBuilt("week")
	return WeekView{Start: start, End: end, Today: today, Days: cells, FailedSources: fetched.failed}, nil
}

// Transport resolves a single date against its override and the default matrix.
func (service *CalendarService) Transport(ctx context.Context, date calendar.DateKey) (calendar.Assignment, error) {
	date, err := calendar.ParseDateKey(string(date))
	if err != nil {
		return calendar.Assignment{}, err
	}

	matrix, err := service.repositories.Settings.CarpoolMatrix(ctx)
	if err != nil {
		return calendar.Assignment{}, fmt.Errorf("loading carpool matrix: %w", err)
	}

	var override *calendar.Override
	row, err := service.repositories.Transport.Find(ctx, date)
	switch {
	case err == nil:
		override = toOverride(row)
	case !errors.Is(err, repository.ErrNotFound):
		return calendar.Assignment{}, fmt.Errorf("loading transport override: %w", err)
	}

	return calendar.ResolveTransport(date, override, matrix), nil
}

type fetchResult struct {
	sources   calendar.Sources
	overrides map[calendar.DateKey]*calendar.Override
	matrix    calendar.CarpoolMatrix
	failed    []string
}

func (result *fetchResult) fill(cell *Cell, day calendar.Day) {
	cell.OnHoliday = day.OnHoliday
	if day.Items != nil {
		cell.Items = day.Items
	}
	if calendar.IsSchoolDay(cell.Date.Weekday()) {
		assignment := calendar.ResolveTransport(cell.Date, result.overrides[cell.Date], result.matrix)
		cell.Transport = &assignment
	}
}

// fetch loads every source for [start, end] concurrently. A failing source is
// logged and left empty so the rest of the view still renders. Only
// cancellation of ctx aborts the whole fetch.
func (service *CalendarService) fetch(ctx context.Context, start, end calendar.DateKey) (*fetchResult, error) {
	result := &fetchResult{}
	var mutex sync.Mutex

	group, groupCtx := errgroup.WithContext(ctx)
	load := func(source string, fn func(ctx context.Context) error) {
		group.Go(func() error {
			began := time.Now()
			err := fn(groupCtx)
			metrics.ObserveSource(groupCtx, source, began, err)
			if err == nil {
				return nil
			}
			if ctxErr := groupCtx.Err(); ctxErr != nil {
				return ctxErr
			}
			slog.Error("fetching calendar source", "source", source, "start", start, "end", end, "error", err)
			mutex.Lock()
			result.failed = append(result.failed, source)
			mutex.Unlock()
			return nil
		})
	}

	repositories := service.repositories
	load(SourceEvents, func(ctx context.Context) error {
		rows, err := repositories.Events.FindInRange(ctx, start, end)
		result.sources.Events = toCalendarEvents(rows)
		return err
	})
	load(SourceFamilyEvents, func(ctx context.Context) error {
		rows, err := repositories.FamilyEvents.FindInRange(ctx, start, end)
		result.sources.FamilyEvents = toCalendarFamilyEvents(rows)
		return err
	})
	load(SourcePrograms, func(ctx context.Context) error {
		rows, err := repositories.Programs.FindAll(ctx)
		result.sources.Programs = toCalendarPrograms(rows)
		return err
	})
	load(SourceHolidays, func(ctx context.Context) error {
		rows, err := repositories.Holidays.FindOverlapping(ctx, start, end)
		result.sources.Holidays = toCalendarHolidays(rows)
		return err
	})
	load(SourceBookings, func(ctx context.Context) error {
		rows, err := repositories.Bookings.FindInRange(ctx, start, end)
		result.sources.Bookings = toCalendarBookings(rows)
		return err
	})
	load(SourceTransport, func(ctx context.Context) error {
		rows, err := repositories.Transport.FindInRange(ctx, start, end)
		result.overrides = toOverrides(rows)
		return err
	})
	load(SourceCarpool, func(ctx context.Context) error {
		matrix, err := repositories.Settings.CarpoolMatrix(ctx)
		result.matrix = matrix
		return err
	})

	if err := group.Wait(); err != nil {
		return nil, err
	}
	sort.Strings(result.failed)
	return result, nil
}

// CycleProgram advances a program's status and returns the updated row.
func (service *CalendarService) CycleProgram(ctx context.Context, id string) (models.Program, error) {
	program, err := service.repositories.Programs.FindByID(ctx, id)
	if err != nil {
		return models.Program{}, err
	}
	program.Status = program.Status.NextStatus()
	if err := service.repositories.Programs.UpdateStatus(ctx, id, program.Status); err != nil {
		return models.Program{}, err
	}
	return program, nil
}
