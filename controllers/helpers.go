package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/demeter/services"
	"github.com/yeremiapane/demeter/utils"
)

var outcomeStatus = map[services.Outcome]int{
	services.Exists:             http.StatusConflict,
	services.DoesNotExist:       http.StatusNotFound,
	services.TableOccupied:      http.StatusConflict,
	services.TableUnoccupied:    http.StatusConflict,
	services.VariantDoesntExist: http.StatusUnprocessableEntity,
	services.SizeDoesntExist:    http.StatusUnprocessableEntity,
	services.InvalidState:       http.StatusUnprocessableEntity,
	services.NoPermission:       http.StatusForbidden,
	services.NoSession:          http.StatusConflict,
}

// OutcomeStatus maps an engine outcome onto the HTTP status the API answers with.
// okCode is used for Success.
func OutcomeStatus(outcome services.Outcome, okCode int) int {
	if outcome == services.Success {
		return okCode
	}
	if code, ok := outcomeStatus[outcome]; ok {
		return code
	}
	return http.StatusInternalServerError
}

// respondOutcome answers with the outcome tag as message. data is only sent on Success.
func respondOutcome(c *gin.Context, outcome services.Outcome, okCode int, data interface{}) {
	if outcome != services.Success {
		data = nil
	}
	utils.RespondJSON(c, OutcomeStatus(outcome, okCode), outcome.String(), data)
}

// respondFailure answers an error returned next to (or instead of) an outcome.
func respondFailure(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		utils.RespondError(c, http.StatusNotFound, err)
	case errors.Is(err, services.ErrInvalidInput):
		utils.RespondError(c, http.StatusBadRequest, err)
	default:
		utils.ErrorLogger.WithError(err).WithField("path", c.FullPath()).Error("request failed")
		utils.RespondError(c, http.StatusInternalServerError, errors.New("internal error"))
	}
}

func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid "+name))
		return 0, false
	}
	return id, true
}
