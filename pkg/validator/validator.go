package validator

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// RequestValidator implements echo.Validator using go-playground/validator
type RequestValidator struct {
	v *validator.Validate
}

// New creates a request validator
func New() *RequestValidator {
	return &RequestValidator{v: validator.New()}
}

// Validate performs struct validation, surfacing failures as 400s so echo
// does not report them as internal errors.
func (rv *RequestValidator) Validate(i interface{}) error {
	if err := rv.v.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
