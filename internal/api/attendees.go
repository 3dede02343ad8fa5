package api

import (
	"fmt"
	"net/http"

	"github.com/SergeyKozhin/recurring-calendar/internal/model"
	"github.com/SergeyKozhin/recurring-calendar/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type attendeeReq struct {
	UserID string             `json:"user_id"`
	Email  string             `json:"email"`
	Name   string             `json:"name"`
	Role   model.AttendeeRole `json:"role"`
	RSVP   bool               `json:"rsvp"`
}

func (at *attendeeReq) validate(v *validator.Validator, key string) {
	v.Check(validator.Matches(at.Email, validator.EmailRX), key+".email", "must be a valid email address")
	v.Check(at.Role == "" || validator.In(string(at.Role), string(model.AttendeeRoleOrganizer), string(model.AttendeeRoleAttendee)),
		key+".role", "role must be organizer or attendee")
}

func (at *attendeeReq) toModel() *model.AttendeeCreate {
	return &model.AttendeeCreate{
		UserID: at.UserID,
		Email:  at.Email,
		Name:   at.Name,
		Role:   at.Role,
		RSVP:   at.RSVP,
	}
}

func (a *Api) getAttendeesHandler(w http.ResponseWriter, r *http.Request) {
	attendees, err := a.eventsService.GetAttendees(r.Context(), chi.URLParam(r, "uid"))
	if err != nil {
		a.eventErrorResponse(w, r, fmt.Errorf("get attendees: %w", err))
		return
	}

	resp, _ := mapSlice(attendees, mapToAttendeeResp)

	if err := a.writeJSON(w, http.StatusOK, resp, nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}

func (a *Api) addAttendeeHandler(w http.ResponseWriter, r *http.Request) {
	req := &attendeeReq{}
	if err := a.readJSON(w, r, req); err != nil {
		a.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()
	req.validate(v, "attendee")
	if !v.Valid() {
		a.failedValidationResponse(w, r, v.Errors)
		return
	}

	attendee, err := a.eventsService.AddAttendee(r.Context(), chi.URLParam(r, "uid"), req.toModel())
	if err != nil {
		a.eventErrorResponse(w, r, fmt.Errorf("add attendee: %w", err))
		return
	}

	resp, _ := mapToAttendeeResp(attendee)

	if err := a.writeJSON(w, http.StatusCreated, resp, nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}

func (a *Api) updateAttendeeHandler(w http.ResponseWriter, r *http.Request) {
	req := &struct {
		Status model.AttendeeStatus `json:"status"`
	}{}

	if err := a.readJSON(w, r, req); err != nil {
		a.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()
	v.Check(req.Status.Valid(), "status", "unknown status")
	if !v.Valid() {
		a.failedValidationResponse(w, r, v.Errors)
		return
	}

	attendee, err := a.eventsService.UpdateAttendeeStatus(r.Context(), chi.URLParam(r, "uid"), chi.URLParam(r, "attendeeID"), req.Status)
	if err != nil {
		a.eventErrorResponse(w, r, fmt.Errorf("update attendee: %w", err))
		return
	}

	resp, _ := mapToAttendeeResp(attendee)

	if err := a.writeJSON(w, http.StatusOK, resp, nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}

func (a *Api) removeAttendeeHandler(w http.ResponseWriter, r *http.Request) {
	if err := a.eventsService.RemoveAttendee(r.Context(), chi.URLParam(r, "uid"), chi.URLParam(r, "attendeeID")); err != nil {
		a.eventErrorResponse(w, r, fmt.Errorf("remove attendee: %w", err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
