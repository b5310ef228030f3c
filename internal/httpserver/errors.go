package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/online_quiz/internal/logging"
	"github.com/Skotchmaster/online_quiz/internal/service"
)

const (
	MsgInvalidCredentials = "Invalid username or password"
	MsgUserNotFound       = "User not found"
	MsgOTPMismatch        = "OTP is not matched."
	MsgOTPExpired         = "OTP is expired."
	MsgDeliveryFailed     = "Failed to send OTP"
	MsgNoSession          = "No active session to destroy"
	MsgInternal           = "internal error"
)

// detail drops the sentinel prefix from a wrapped service error.
func detail(err, sentinel error) string {
	msg := strings.TrimPrefix(err.Error(), sentinel.Error()+": ")
	if msg == err.Error() {
		return http.StatusText(http.StatusBadRequest)
	}
	return msg
}

// toHTTPError maps service errors onto status codes and public messages.
func toHTTPError(c echo.Context, handler string, err error) *echo.HTTPError {
	l := logging.FromContext(c.Request().Context()).With("handler", handler)

	var he *echo.HTTPError
	switch {
	case errors.Is(err, service.ErrValidation):
		he = echo.NewHTTPError(http.StatusBadRequest, detail(err, service.ErrValidation))
	case errors.Is(err, service.ErrConflict):
		he = echo.NewHTTPError(http.StatusBadRequest, detail(err, service.ErrConflict))
	case errors.Is(err, service.ErrInvalidCredentials):
		he = echo.NewHTTPError(http.StatusUnauthorized, MsgInvalidCredentials)
	case errors.Is(err, service.ErrUserNotFound):
		he = echo.NewHTTPError(http.StatusNotFound, MsgUserNotFound)
	case errors.Is(err, service.ErrOTPMismatch):
		he = echo.NewHTTPError(http.StatusNotFound, MsgOTPMismatch)
	case errors.Is(err, service.ErrOTPExpired):
		he = echo.NewHTTPError(http.StatusGone, MsgOTPExpired)
	case errors.Is(err, service.ErrNotFound):
		he = echo.NewHTTPError(http.StatusNotFound, detail(err, service.ErrNotFound))
	case errors.Is(err, service.ErrSearchDisabled):
		he = echo.NewHTTPError(http.StatusServiceUnavailable, "search is not available")
	case errors.Is(err, service.ErrDelivery):
		he = echo.NewHTTPError(http.StatusInternalServerError, MsgDeliveryFailed)
	default:
		he = echo.NewHTTPError(http.StatusInternalServerError, MsgInternal)
	}

	if he.Code >= http.StatusInternalServerError {
		l.Error(handler+"_error", "status", he.Code, "error", err)
	} else {
		l.Warn(handler+"_error", "status", he.Code, "error", err)
	}
	return he.SetInternal(err)
}

// ErrorHandler renders every error as {"message": ...}.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := MsgInternal

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		switch m := he.Message.(type) {
		case string:
			msg = m
		case error:
			msg = m.Error()
		default:
			msg = http.StatusText(code)
		}
	}

	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(code)
	} else {
		werr = c.JSON(code, echo.Map{"message": msg})
	}
	if werr != nil {
		logging.FromContext(c.Request().Context()).Error("error_response_failed", "error", werr)
	}
}
