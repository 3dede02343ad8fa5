package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/SergeyKozhin/recurring-calendar/internal/model"
	"github.com/SergeyKozhin/recurring-calendar/internal/pkg/identity"
	"github.com/SergeyKozhin/recurring-calendar/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

var scopes = map[string]model.Scope{
	model.ScopeThisOnly.String():      model.ScopeThisOnly,
	model.ScopeThisAndFuture.String(): model.ScopeThisAndFuture,
}

var roles = map[string]model.Role{
	"owner":   model.RoleOwner,
	"invitee": model.RoleInvitee,
}

// parseScope defaults to this_only when the value is omitted.
func parseScope(v string) (model.Scope, bool) {
	if v == "" {
		return model.ScopeThisOnly, true
	}
	scope, ok := scopes[v]
	return scope, ok
}

func isOccurrenceID(id string) bool {
	_, instant := identity.Decode(id)
	return instant != nil
}

func (a *Api) createEventHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveUserID)
		return
	}

	req := &struct {
		Summary     string            `json:"summary"`
		Description string            `json:"description"`
		Location    string            `json:"location"`
		Status      model.EventStatus `json:"status"`
		From        dateTime          `json:"from"`
		To          dateTime          `json:"to"`
		RRule       string            `json:"rrule"`
		Attendees   []attendeeReq     `json:"attendees"`
	}{}

	if err := a.readJSON(w, r, req); err != nil {
		a.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()

	from, to := time.Time(req.From), time.Time(req.To)
	v.Check(!from.IsZero(), "from", "from must be provided")
	v.Check(!to.IsZero(), "to", "to must be provided")
	v.Check(!to.Before(from), "to", "to must not be before from")
	v.Check(req.Status == "" || req.Status.Valid(), "status", "unknown status")
	for i := range req.Attendees {
		req.Attendees[i].validate(v, fmt.Sprintf("attendees[%d]", i))
	}

	if !v.Valid() {
		a.failedValidationResponse(w, r, v.Errors)
		return
	}

	attendees, _ := mapSlice(req.Attendees, func(at attendeeReq) (*model.AttendeeCreate, error) {
		return at.toModel(), nil
	})

	id, err := a.eventsService.CreateSeries(r.Context(), userID, &model.SeriesCreate{
		From:      from,
		To:        to,
		RRule:     req.RRule,
		Attendees: attendees,
		EventContent: model.EventContent{
			Summary:     req.Summary,
			Description: req.Description,
			Location:    req.Location,
			Status:      req.Status,
		},
	})
	if err != nil {
		a.eventErrorResponse(w, r, fmt.Errorf("create series: %w", err))
		return
	}

	if err := a.writeJSON(w, http.StatusCreated, map[string]string{"id": id}, nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}

func (a *Api) getEventsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveUserID)
		return
	}

	scope, window, err := a.parseEventsQuery(r)
	if err != nil {
		a.badRequestResponse(w, r, err)
		return
	}
	scope.UserID = userID

	v := validator.New()
	v.Check(window.To.After(window.From), "to", "to must be after from")
	v.Check(a.maxWindow <= 0 || window.To.Sub(window.From) <= a.maxWindow, "to", fmt.Sprintf("window must not exceed %v", a.maxWindow))

	if !v.Valid() {
		a.failedValidationResponse(w, r, v.Errors)
		return
	}

	occurrences, err := a.eventsService.ReadAll(r.Context(), *scope, *window)
	if err != nil {
		a.eventErrorResponse(w, r, fmt.Errorf("read events: %w", err))
		return
	}

	resp, _ := mapSlice(occurrences, mapToEventResp)

	if err := a.writeJSON(w, http.StatusOK, resp, nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}

func (a *Api) parseEventsQuery(r *http.Request) (*model.CalendarScope, *model.Window, error) {
	from, err := parseTimeParam(r, "from")
	if err != nil {
		return nil, nil, err
	}

	to, err := parseTimeParam(r, "to")
	if err != nil {
		return nil, nil, err
	}

	scope := &model.CalendarScope{Role: model.RoleOwner}
	if v := r.URL.Query().Get("role"); v != "" {
		role, ok := roles[v]
		if !ok {
			return nil, nil, fmt.Errorf("unknown role %q", v)
		}
		scope.Role = role
	}

	return scope, &model.Window{From: from, To: to}, nil
}

func (a *Api) getEventHandler(w http.ResponseWriter, r *http.Request) {
	occurrence, err := a.eventsService.ReadOne(r.Context(), chi.URLParam(r, "eventID"))
	if err != nil {
		a.eventErrorResponse(w, r, fmt.Errorf("read event: %w", err))
		return
	}

	resp, _ := mapToEventResp(occurrence)

	if err := a.writeJSON(w, http.StatusOK, resp, nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}

func (a *Api) updateEventHandler(w http.ResponseWriter, r *http.Request) {
	req := &struct {
		Scope       string             `json:"scope"`
		Summary     *string            `json:"summary"`
		Description *string            `json:"description"`
		Location    *string            `json:"location"`
		Status      *model.EventStatus `json:"status"`
		From        *dateTime          `json:"from"`
		To          *dateTime          `json:"to"`
		RRule       *string            `json:"rrule"`
	}{}

	if err := a.readJSON(w, r, req); err != nil {
		a.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()

	scope, ok := parseScope(req.Scope)
	v.Check(ok, "scope", "scope must be this_only or this_and_future")
	v.Check(req.Status == nil || req.Status.Valid(), "status", "unknown status")
	if req.From != nil && req.To != nil {
		v.Check(!time.Time(*req.To).Before(time.Time(*req.From)), "to", "to must not be before from")
	}
	v.Check(req.RRule == nil || scope != model.ScopeThisOnly || !isOccurrenceID(chi.URLParam(r, "eventID")),
		"rrule", "rrule can't be changed for a single occurrence")

	if !v.Valid() {
		a.failedValidationResponse(w, r, v.Errors)
		return
	}

	patch := &model.EventPatch{
		Summary:     req.Summary,
		Description: req.Description,
		Location:    req.Location,
		Status:      req.Status,
		From:        req.From.timePtr(),
		To:          req.To.timePtr(),
		RRule:       req.RRule,
	}

	if err := a.eventsService.Update(r.Context(), chi.URLParam(r, "eventID"), scope, patch); err != nil {
		a.eventErrorResponse(w, r, fmt.Errorf("update event: %w", err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (a *Api) deleteEventHandler(w http.ResponseWriter, r *http.Request) {
	v := validator.New()

	scope, ok := parseScope(r.URL.Query().Get("scope"))
	v.Check(ok, "scope", "scope must be this_only or this_and_future")

	cancel, err := parseBoolParam(r, "cancel")
	if err != nil {
		v.AddError("cancel", err.Error())
	}

	if !v.Valid() {
		a.failedValidationResponse(w, r, v.Errors)
		return
	}

	req := model.DeleteRequest{Scope: scope, Cancel: cancel}
	if err := a.eventsService.Delete(r.Context(), chi.URLParam(r, "eventID"), req); err != nil {
		a.eventErrorResponse(w, r, fmt.Errorf("delete event: %w", err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
