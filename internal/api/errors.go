package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/SergeyKozhin/recurring-calendar/internal/model"
)

func (a *Api) logError(_ *http.Request, err error) {
	a.logger.Errorw("server error", "error", err)
}

func (a *Api) errorResponse(w http.ResponseWriter, r *http.Request, status int, message interface{}) {
	data := map[string]interface{}{"error": message}

	if err := a.writeJSON(w, status, data, nil); err != nil {
		a.logError(r, err)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (a *Api) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	a.logError(r, err)

	message := "the server encountered a problem and could not process your request"
	a.errorResponse(w, r, http.StatusInternalServerError, message)
}

func (a *Api) clientErrorResponse(w http.ResponseWriter, r *http.Request, status int, message interface{}) {
	a.logger.Debugw("client error", "err", message)
	a.errorResponse(w, r, status, message)
}

func (a *Api) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	message := "the requested resource could not be found"
	a.clientErrorResponse(w, r, http.StatusNotFound, message)
}

func (a *Api) methodNotAllowedResponse(w http.ResponseWriter, r *http.Request) {
	message := fmt.Sprintf("the %s method is not supported for this resource", r.Method)
	a.clientErrorResponse(w, r, http.StatusMethodNotAllowed, message)
}

func (a *Api) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	a.clientErrorResponse(w, r, http.StatusBadRequest, err.Error())
}

func (a *Api) failedValidationResponse(w http.ResponseWriter, r *http.Request, errors map[string]string) {
	a.clientErrorResponse(w, r, http.StatusUnprocessableEntity, errors)
}

func (a *Api) unauthorizedResponse(w http.ResponseWriter, r *http.Request, err error) {
	a.clientErrorResponse(w, r, http.StatusUnauthorized, err.Error())
}

func (a *Api) conflictResponse(w http.ResponseWriter, r *http.Request, err error) {
	a.clientErrorResponse(w, r, http.StatusConflict, err.Error())
}

// eventErrorResponse translates service errors. Anything that is not a domain
// error, a failed transaction included, is a server error.
func (a *Api) eventErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	var ruleErr *model.InvalidRRuleError

	switch {
	case errors.As(err, &ruleErr):
		a.clientErrorResponse(w, r, http.StatusBadRequest, map[string]string{
			"message":  ruleErr.Error(),
			"fragment": ruleErr.Fragment,
		})
	case errors.Is(err, model.ErrNotFound):
		a.notFoundResponse(w, r)
	case errors.Is(err, model.ErrNotRecurring):
		a.conflictResponse(w, r, model.ErrNotRecurring)
	case errors.Is(err, model.ErrInvalidRecurrenceID):
		a.clientErrorResponse(w, r, http.StatusUnprocessableEntity, model.ErrInvalidRecurrenceID.Error())
	case errors.Is(err, model.ErrInvalidTimeRange):
		a.failedValidationResponse(w, r, map[string]string{"to": "to must not be before from"})
	default:
		a.serverErrorResponse(w, r, err)
	}
}
