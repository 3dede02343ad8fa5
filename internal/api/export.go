package api

import (
	"fmt"
	"net/http"

	"github.com/SergeyKozhin/recurring-calendar/internal/ics"
)

func (a *Api) exportCalendarHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveUserID)
		return
	}

	series, err := a.eventsService.ListSeries(r.Context(), userID)
	if err != nil {
		a.eventErrorResponse(w, r, fmt.Errorf("list series: %w", err))
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="calendar.ics"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(ics.Export(series, a.now()))); err != nil {
		a.logError(r, err)
	}
}
