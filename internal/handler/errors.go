package handler

import (
	"errors"
	"net/http"

	"pos-service/internal/identity"
	"pos-service/internal/sales"
	"pos-service/internal/service"

	"github.com/labstack/echo/v4"
)

// errBadRequest marks malformed input that never reached a service
var errBadRequest = errors.New("solicitud inválida")

// statusFor maps service errors to HTTP status codes. Anything unrecognized is a
// failed write or read and surfaces as 500 with its raw message.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrStoreUndefined),
		errors.Is(err, service.ErrConfirmationRequired),
		errors.Is(err, sales.ErrInvalidStoreFilter),
		errors.Is(err, identity.ErrUnknownIdentity),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrCheckoutInProgress):
		return http.StatusConflict
	case errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrOrderNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func jsonError(c echo.Context, err error) error {
	return c.JSON(statusFor(err), echo.Map{"error": err.Error()})
}
