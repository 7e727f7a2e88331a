package httputil

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/ayaan09TTT/tradeforge/internal/apperr"
	"github.com/ayaan09TTT/tradeforge/internal/logger"
)

var statusByCode = map[apperr.Code]int{
	apperr.CodeValidation:         http.StatusBadRequest,
	apperr.CodeNotAuthenticated:   http.StatusUnauthorized,
	apperr.CodeInvalidCredentials: http.StatusUnauthorized,
	apperr.CodeForbidden:          http.StatusForbidden,
	apperr.CodeSelfTrade:          http.StatusForbidden,
	apperr.CodeNotFound:           http.StatusNotFound,
	apperr.CodeOrderNotFound:      http.StatusNotFound,
	apperr.CodeDuplicateEmail:     http.StatusConflict,
	apperr.CodeNotAvailable:       http.StatusConflict,
	apperr.CodeInvalidTransition:  http.StatusConflict,
	apperr.CodeAlreadySettled:     http.StatusConflict,
	apperr.CodeConflict:           http.StatusConflict,
	apperr.CodeInsufficientBal:    http.StatusUnprocessableEntity,
	apperr.CodeExternalService:    http.StatusBadGateway,
}

// Error writes err as a JSON error envelope. Taxonomy errors map to their
// HTTP status; anything else is a 500 with the detail kept out of the body.
func Error(c echo.Context, err error) error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		status, ok := statusByCode[ae.Code]
		if !ok {
			status = http.StatusInternalServerError
		}
		return c.JSON(status, echo.Map{"error": ae})
	}
	logger.Log.Error("internal error", zap.Error(err))
	return c.JSON(http.StatusInternalServerError, echo.Map{
		"error": apperr.New("internal_error", "something went wrong"),
	})
}
