package services

import (
	"context"
	"database/sql"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/bdickey/b6/internal/calendar"
	"github.com/bdickey/b6/internal/models"
	"github.com/bdickey/b6/internal/repository"
	"github.com/bdickey/b6/internal/testutil"
)

func calendarRepositories(db *sql.DB) CalendarRepositories {
	return CalendarRepositories{
		Events:       repository.NewEventRepository(db),
		FamilyEvents: repository.NewFamilyEventRepository(db),
		Programs:     repository.NewProgramRepository(db),
		Holidays:     repository.NewHolidayRepository(db),
		Bookings:     repository.NewBookingRepository(db),
		Transport:    repository.NewTransportRepository(db),
		Settings:     repository.NewSettingsRepository(db),
	}
}

func newTestCalendarService(t *testing.T, repositories CalendarRepositories, today time.Time) *CalendarService {
	t.Helper()
	service := NewCalendarService(repositories, time.UTC)
	service.now = func() time.Time { return today }
	return service
}

type failingEvents struct {
	repository.EventRepository
}

func (failingEvents) FindInRange(context.Context, calendar.DateKey, calendar.DateKey) ([]models.CalendarEvent, error) {
	return nil, errors.New("events table locked")
}

func titlesOn(cell Cell) []string {
	var titles []string
	for _, item := range cell.Items {
		titles = append(titles, item.Title)
	}
	return titles
}

func cellFor(t *testing.T, cells []Cell, date calendar.DateKey) Cell {
	t.Helper()
	for _, cell := range cells {
		if cell.Date == date {
			return cell
		}
	}
	t.Fatalf("no cell for %s", date)
	return Cell{}
}

func seedMarch2025(t *testing.T, repositories CalendarRepositories) {
	t.Helper()
	ctx := context.Background()

	if _, err := repositories.Programs.Create(ctx, models.Program{Name: "Soccer", DayTime: "Wed 4pm", Status: calendar.ProgramEnrolled}); err != nil {
		t.Fatalf("creating program: %v", err)
	}
	if _, err := repositories.Holidays.Create(ctx, models.Holiday{Name: "Spring Break", StartDate: "2025-03-24", EndDate: "2025-03-28"}); err != nil {
		t.Fatalf("creating holiday: %v", err)
	}
	if _, err := repositories.Events.Create(ctx, models.CalendarEvent{Date: "2025-03-26", Title: "Dentist", ColorTag: calendar.ColorRed}); err != nil {
		t.Fatalf("creating event: %v", err)
	}
	if _, err := repositories.Events.Create(ctx, models.CalendarEvent{Date: "2025-04-02", Title: "April thing"}); err != nil {
		t.Fatalf("creating event: %v", err)
	}
	if err := repositories.Settings.SetCarpoolMatrix(ctx, calendar.CarpoolMatrix{
		time.Monday:    {AM: "Alice", PM: "Bob"},
		time.Wednesday: {AM: "Alice", PM: "Bob"},
	}); err != nil {
		t.Fatalf("saving matrix: %v", err)
	}
	carol := "Carol"
	if _, err := repositories.Transport.Upsert(ctx, "2025-03-03", models.TransportPatch{AMPerson: &carol}); err != nil {
		t.Fatalf("saving override: %v", err)
	}
}

func TestCalendarService_Month(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	repositories := calendarRepositories(db)
	seedMarch2025(t, repositories)
	service := newTestCalendarService(t, repositories, time.Date(2025, 3, 26, 9, 0, 0, 0, time.UTC))

	view, err := service.Month(context.Background(), 2025, time.March)
	if err != nil {
		t.Fatalf("building month: %v", err)
	}
	if len(view.Cells) != calendar.GridSize {
		t.Fatalf("expected %d cells, got %d", calendar.GridSize, len(view.Cells))
	}
	if len(view.FailedSources) != 0 {
		t.Errorf("expected no failed sources, got %v", view.FailedSources)
	}

	wednesday := cellFor(t, view.Cells, "2025-03-26")
	if !wednesday.IsToday || !wednesday.OnHoliday {
		t.Errorf("expected 2025-03-26 to be today and on holiday, got %+v", wednesday)
	}
	expected := []string{"Spring Break", "Dentist", "Soccer"}
	if got := titlesOn(wednesday); !reflect.DeepEqual(got, expected) {
		t.Errorf("expected %v, got %v", expected, got)
	}

	monday := cellFor(t, view.Cells, "2025-03-03")
	if monday.Transport == nil || *monday.Transport != (calendar.Assignment{AM: "Carol", PM: "Bob"}) {
		t.Errorf("expected override AM with default PM, got %+v", monday.Transport)
	}

	saturday := cellFor(t, view.Cells, "2025-03-01")
	if saturday.Transport != nil {
		t.Errorf("expected no transport on a weekend, got %+v", saturday.Transport)
	}

	// Padding cells are drawn but never carry items, even on a Wednesday.
	padding := cellFor(t, view.Cells, "2025-04-02")
	if padding.InMonth || len(padding.Items) != 0 || padding.Transport != nil {
		t.Errorf("expected empty padding cell, got %+v", padding)
	}
	if padding.Items == nil {
		t.Error("expected non-nil items on padding cell")
	}
}

func TestCalendarService_MonthToleratesFailedSource(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	repositories := calendarRepositories(db)
	seedMarch2025(t, repositories)
	repositories.Events = failingEvents{}
	service := newTestCalendarService(t, repositories, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))

	view, err := service.Month(context.Background(), 2025, time.March)
	if err != nil {
		t.Fatalf("expected partial view, got error %v", err)
	}
	if !reflect.DeepEqual(view.FailedSources, []string{SourceEvents}) {
		t.Errorf("expected events reported as failed, got %v", view.FailedSources)
	}

	expected := []string{"Spring Break", "Soccer"}
	if got := titlesOn(cellFor(t, view.Cells, "2025-03-26")); !reflect.DeepEqual(got, expected) {
		t.Errorf("expected %v without the failed source, got %v", expected, got)
	}
}

func TestCalendarService_MonthRejectsBadMonth(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	service := newTestCalendarService(t, calendarRepositories(db), time.Now())

	for _, month := range []time.Month{0, 13} {
		if _, err := service.Month(context.Background(), 2025, month); !errors.Is(err, ErrInvalidMonth) {
			t.Errorf("month %d: expected ErrInvalidMonth, got %v", month, err)
		}
	}
}

func TestCalendarService_RejectsYearsOutsideFourDigits(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	service := newTestCalendarService(t, calendarRepositories(db), time.Now())
	ctx := context.Background()

	months := []struct {
		year  int
		month time.Month
	}{
		{10000, time.January},
		{0, time.June},
		{-1, time.March},
		{9999, time.December},
		{1, time.January},
	}
	for _, test := range months {
		if _, err := service.Month(ctx, test.year, test.month); !errors.Is(err, ErrInvalidYear) {
			t.Errorf("%d-%02d: expected ErrInvalidYear, got %v", test.year, test.month, err)
		}
	}

	for _, date := range []calendar.DateKey{"9999-12-31", "0001-01-01"} {
		if _, err := service.Week(ctx, date); !errors.Is(err, ErrInvalidYear) {
			t.Errorf("%s: expected ErrInvalidYear, got %v", date, err)
		}
	}

	view, err := service.Week(ctx, "9999-12-25")
	if err != nil {
		t.Fatalf("building last full week: %v", err)
	}
	if view.Start != "9999-12-19" || view.End != "9999-12-25" || len(view.Days) != 7 {
		t.Errorf("expected 9999-12-19..9999-12-25 with 7 days, got %s..%s with %d", view.Start, view.End, len(view.Days))
	}
}

func TestCalendarService_MonthCanceled(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	service := newTestCalendarService(t, calendarRepositories(db), time.Now())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := service.Month(ctx, 2025, time.March); err == nil {
		t.Error("expected canceled context to abort the view")
	}
}

func TestCalendarService_WeekCrossesMonths(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	repositories := calendarRepositories(db)
	seedMarch2025(t, repositories)
	service := newTestCalendarService(t, repositories, time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC))

	view, err := service.Week(context.Background(), "2025-04-01")
	if err != nil {
		t.Fatalf("building week: %v", err)
	}
	if view.Start != "2025-03-30" || view.End != "2025-04-05" {
		t.Errorf("expected week 2025-03-30..2025-04-05, got %s..%s", view.Start, view.End)
	}
	if len(view.Days) != 7 {
		t.Fatalf("expected 7 days, got %d", len(view.Days))
	}

	april2 := cellFor(t, view.Days, "2025-04-02")
	expected := []string{"April thing", "Soccer"}
	if got := titlesOn(april2); !reflect.DeepEqual(got, expected) {
		t.Errorf("expected %v, got %v", expected, got)
	}
	if april2.Transport == nil || april2.Transport.AM != "Alice" {
		t.Errorf("expected default Wednesday transport, got %+v", april2.Transport)
	}
	if !cellFor(t, view.Days, "2025-04-01").IsToday {
		t.Error("expected 2025-04-01 flagged as today")
	}

	var parseErr *calendar.ParseError
	if _, err := service.Week(context.Background(), "April 1"); !errors.As(err, &parseErr) {
		t.Errorf("expected ParseError, got %v", err)
	}
}

func TestCalendarService_Transport(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	repositories := calendarRepositories(db)
	seedMarch2025(t, repositories)
	service := newTestCalendarService(t, repositories, time.Now())
	ctx := context.Background()

	tests := []struct {
		date     calendar.DateKey
		expected calendar.Assignment
	}{
		{"2025-03-03", calendar.Assignment{AM: "Carol", PM: "Bob"}},
		{"2025-03-10", calendar.Assignment{AM: "Alice", PM: "Bob"}},
		{"2025-03-11", calendar.Assignment{}},
		{"2025-03-08", calendar.Assignment{}},
	}
	for _, test := range tests {
		got, err := service.Transport(ctx, test.date)
		if err != nil {
			t.Fatalf("%s: resolving transport: %v", test.date, err)
		}
		if got != test.expected {
			t.Errorf("%s: expected %+v, got %+v", test.date, test.expected, got)
		}
	}
}

func TestCalendarService_TodayUsesLocation(t *testing.T) {
	location := time.FixedZone("UTC-8", -8*60*60)
	service := NewCalendarService(CalendarRepositories{}, location)
	service.now = func() time.Time { return time.Date(2025, 3, 2, 5, 0, 0, 0, time.UTC) }

	if got := service.Today(); got != "2025-03-01" {
		t.Errorf("expected 2025-03-01 in UTC-8, got %s", got)
	}
}

func TestCalendarService_CycleProgram(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	repositories := calendarRepositories(db)
	service := newTestCalendarService(t, repositories, time.Now())
	ctx := context.Background()

	program, _ := repositories.Programs.Create(ctx, models.Program{Name: "Chess"})
	expected := []calendar.ProgramStatus{calendar.ProgramWaitlist, calendar.ProgramEnrolled, calendar.ProgramConsider}
	for _, want := range expected {
		updated, err := service.CycleProgram(ctx, program.ID)
		if err != nil {
			t.Fatalf("cycling program: %v", err)
		}
		if updated.Status != want {
			t.Errorf("expected %s, got %s", want, updated.Status)
		}
	}

	if _, err := service.CycleProgram(ctx, "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
