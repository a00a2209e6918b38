package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/bdickey/b6/internal/calendar"
	"github.com/bdickey/b6/internal/models"
	"github.com/bdickey/b6/internal/repository"
	"github.com/bdickey/b6/internal/services"
	"github.com/go-chi/chi/v5"
)

type CalendarHandler struct {
	calendarService *services.CalendarService
	transportRepo   repository.TransportRepository
	settingsRepo    repository.SettingsRepository
}

func NewCalendarHandler(
	calendarService *services.CalendarService,
	transportRepo repository.TransportRepository,
	settingsRepo repository.SettingsRepository,
) *CalendarHandler {
	return &CalendarHandler{
		calendarService: calendarService,
		transportRepo:   transportRepo,
		settingsRepo:    settingsRepo,
	}
}

type transportResponse struct {
	Date calendar.DateKey `json:"date"`
	AM   string           `json:"am"`
	PM   string           `json:"pm"`
}

type carpoolPayload struct {
	Matrix map[string]calendar.Assignment `json:"matrix"`
	Text   string                         `json:"text"`
}

func (handler *CalendarHandler) CurrentMonth(w http.ResponseWriter, r *http.Request) {
	year, month, _ := handler.calendarService.Today().Parts()
	handler.renderMonth(w, r, year, month)
}

func (handler *CalendarHandler) Month(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid year")
		return
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid month")
		return
	}
	handler.renderMonth(w, r, year, time.Month(month))
}

func (handler *CalendarHandler) renderMonth(w http.ResponseWriter, r *http.Request, year int, month time.Month) {
	view, err := handler.calendarService.Month(r.Context(), year, month)
	if err != nil {
		writeFailure(w, "building month view", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (handler *CalendarHandler) Week(w http.ResponseWriter, r *http.Request) {
	view, err := handler.calendarService.Week(r.Context(), calendar.DateKey(chi.URLParam(r, "date")))
	if err != nil {
		writeFailure(w, "building week view", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (handler *CalendarHandler) GetTransport(w http.ResponseWriter, r *http.Request) {
	handler.renderTransport(w, r, calendar.DateKey(chi.URLParam(r, "date")))
}

// PutTransport patches the AM and/or PM slot for one date and returns the
// resolved assignment.
func (handler *CalendarHandler) PutTransport(w http.ResponseWriter, r *http.Request) {
	date, err := calendar.ParseDateKey(chi.URLParam(r, "date"))
	if err != nil {
		writeFailure(w, "parsing transport date", err)
		return
	}

	var patch models.TransportPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	if patch.AMPerson == nil && patch.PMPerson == nil {
		writeError(w, http.StatusBadRequest, "am_person or pm_person is required")
		return
	}

	if _, err := handler.transportRepo.Upsert(r.Context(), date, patch); err != nil {
		writeFailure(w, "saving transport override", err)
		return
	}
	handler.renderTransport(w, r, date)
}

func (handler *CalendarHandler) renderTransport(w http.ResponseWriter, r *http.Request, date calendar.DateKey) {
	assignment, err := handler.calendarService.Transport(r.Context(), date)
	if err != nil {
		writeFailure(w, "resolving transport", err)
		return
	}
	writeJSON(w, http.StatusOK, transportResponse{Date: date, AM: assignment.AM, PM: assignment.PM})
}

func (handler *CalendarHandler) GetCarpool(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	matrix, err := handler.settingsRepo.CarpoolMatrix(ctx)
	if err != nil {
		writeFailure(w, "loading carpool matrix", err)
		return
	}
	text, err := handler.settingsRepo.Get(ctx, repository.SettingCarpoolText)
	if err != nil && !isNotFound(err) {
		writeFailure(w, "loading carpool text", err)
		return
	}

	writeJSON(w, http.StatusOK, carpoolPayload{Matrix: matrix.Names(), Text: text})
}

func (handler *CalendarHandler) PutCarpool(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var payload carpoolPayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	matrix, err := calendar.CarpoolMatrixFromNames(payload.Matrix)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := handler.settingsRepo.SetCarpoolMatrix(ctx, matrix); err != nil {
		writeFailure(w, "saving carpool matrix", err)
		return
	}
	if err := handler.settingsRepo.Set(ctx, repository.SettingCarpoolText, payload.Text); err != nil {
		writeFailure(w, "saving carpool text", err)
		return
	}

	writeJSON(w, http.StatusOK, carpoolPayload{Matrix: matrix.Names(), Text: payload.Text})
}

func (handler *CalendarHandler) CycleProgram(w http.ResponseWriter, r *http.Request) {
	program, err := handler.calendarService.CycleProgram(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, "cycling program status", err)
		return
	}
	writeJSON(w, http.StatusOK, program)
}
