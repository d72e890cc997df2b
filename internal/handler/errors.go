package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"pos-service/internal/model"
)

// httpStatus maps a domain error kind to the HTTP status the thin request
// layer reports. Anything unrecognized is a 500 and its detail stays out of
// the response body.
func httpStatus(err error) int {
	switch model.KindOf(err) {
	case model.ErrNotFound:
		return http.StatusNotFound
	case model.ErrProductNotAvailable, model.ErrInsufficientStock:
		return http.StatusConflict
	case model.ErrInsufficientBalance:
		return http.StatusPaymentRequired
	case model.ErrInvalidDiscount, model.ErrInvalidAmount, model.ErrEmptyCart,
		model.ErrInvalidPayment, model.ErrInvalidRequest:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// respondError writes the error as a JSON body. Domain errors carry their
// own message, which already names the offending product or amount.
func respondError(c echo.Context, err error) error {
	status := httpStatus(err)
	if status == http.StatusInternalServerError {
		return c.JSON(status, echo.Map{"error": "internal server error"})
	}
	return c.JSON(status, echo.Map{"error": err.Error(), "kind": model.KindOf(err)})
}
