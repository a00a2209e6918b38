package models

import (
	"time"

	"github.com/bdickey/b6/internal/calendar"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

type TokenScope string

const (
	TokenScopeAPI  TokenScope = "api"
	TokenScopeICal TokenScope = "ical"
)

type BookingStatus string

const (
	BookingConfirmed BookingStatus = "confirmed"
	BookingTentative BookingStatus = "tentative"
	BookingPast      BookingStatus = "past"
)

type User struct {
	ID          string
	OIDCSubject string
	Email       string
	Name        string
	AvatarURL   string
	Role        Role
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type APIToken struct {
	ID              string
	Name            string
	TokenHash       string
	Scope           TokenScope
	CreatedByUserID string
	ExpiresAt       *time.Time
	CreatedAt       time.Time
}

type CalendarEvent struct {
	ID        string            `json:"id"`
	Date      calendar.DateKey  `json:"date"`
	Title     string            `json:"title"`
	ColorTag  calendar.ColorTag `json:"color_tag"`
	Notes     string            `json:"notes"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

type FamilyEvent struct {
	ID        string           `json:"id"`
	Date      calendar.DateKey `json:"date"`
	Name      string           `json:"name"`
	Who       string           `json:"who"`
	Notes     string           `json:"notes"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// Program is an afterschool activity. DayTime is whatever the family typed;
// ScheduleDays, when set, is the structured weekday list that takes priority.
type Program struct {
	ID           string                 `json:"id"`
	Name         string                 `json:"name"`
	DayTime      string                 `json:"day_time"`
	ScheduleDays []string               `json:"schedule_days,omitempty"`
	StartTime    *string                `json:"start_time,omitempty"`
	EndTime      *string                `json:"end_time,omitempty"`
	Location     string                 `json:"location"`
	Cost         string                 `json:"cost"`
	Status       calendar.ProgramStatus `json:"status"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

type Holiday struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	StartDate calendar.DateKey `json:"start_date"`
	EndDate   calendar.DateKey `json:"end_date"`
	CreatedAt time.Time        `json:"created_at"`
}

type Sitter struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Contact     string    `json:"contact"`
	RatePerHour *float64  `json:"rate_per_hour,omitempty"`
	Rating      *int      `json:"rating,omitempty"`
	Color       string    `json:"color"`
	Notes       string    `json:"notes"`
	CreatedAt   time.Time `json:"created_at"`
}

type SitterBooking struct {
	ID            string           `json:"id"`
	SitterID      string           `json:"sitter_id"`
	SitterName    string           `json:"sitter_name"`
	SitterColor   string           `json:"sitter_color"`
	Date          calendar.DateKey `json:"date"`
	StartTime     *string          `json:"start_time,omitempty"`
	EndTime       *string          `json:"end_time,omitempty"`
	Hours         *float64         `json:"hours,omitempty"`
	Total         *float64         `json:"total,omitempty"`
	Status        BookingStatus    `json:"status"`
	PaymentMethod string           `json:"payment_method"`
	CreatedAt     time.Time        `json:"created_at"`
}

// TransportOverride is the single per-date row. AM and PM are independent.
type TransportOverride struct {
	Date      calendar.DateKey `json:"date"`
	AMPerson  *string          `json:"am_person"`
	PMPerson  *string          `json:"pm_person"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// TransportPatch changes only the slots that are non-nil. An empty string
// clears the slot.
type TransportPatch struct {
	AMPerson *string `json:"am_person"`
	PMPerson *string `json:"pm_person"`
}
