package validation

import (
	"github.com/go-playground/validator/v10"

	ordersvc "societypay/service/order"
)

// Validator plugs go-playground/validator into echo's c.Validate.
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	return &Validator{v: ordersvc.NewValidator()}
}

func (v *Validator) Validate(i interface{}) error {
	return v.v.Struct(i)
}
