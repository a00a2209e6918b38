package handlers

import (
	"log/slog"
	"net/http"

	"github.com/bdickey/b6/internal/services"
)

type ICalHandler struct {
	feedService *services.FeedService
}

func NewICalHandler(feedService *services.FeedService) *ICalHandler {
	return &ICalHandler{feedService: feedService}
}

// Feed serves the household calendar as a subscribable .ics. Authentication
// happens in middleware.
func (handler *ICalHandler) Feed(w http.ResponseWriter, r *http.Request) {
	body, err := handler.feedService.Build(r.Context())
	if err != nil {
		slog.Error("building ical feed", "error", err)
		http.Error(w, "Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=household.ics")
	w.Write([]byte(body))
}
