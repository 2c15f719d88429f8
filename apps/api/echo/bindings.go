package echoapi

import (
	"github.com/labstack/echo/v4"

	"github.com/trezcool/ccourse/core"
)

const (
	whenParam    = "when"
	whenUpcoming = "upcoming"
	whenPast     = "past"
)

// ClassFilter selects which class sessions are listed.
type ClassFilter struct {
	When string // upcoming | past | "" for all, in date order
}

func (cf *ClassFilter) Bind(ctx echo.Context) error {
	cf.When = core.CleanString(ctx.QueryParam(whenParam), true /* lower */)
	switch cf.When {
	case "", whenUpcoming, whenPast:
		return nil
	}
	return core.NewValidationError(nil, core.FieldError{Field: whenParam, Error: "must be one of upcoming or past"})
}
