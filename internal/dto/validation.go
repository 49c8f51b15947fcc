package dto

import (
	"reflect"

	"github.com/SscSPs/withdrawal_approvals/internal/core/domain"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// RegisterValidators installs the custom binding tags used by the request DTOs
// on gin's default validator. It must run before the router serves requests.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return RegisterOn(v)
}

// RegisterOn installs the custom tags on v.
func RegisterOn(v *validator.Validate) error {
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
	if err := v.RegisterValidation("decimal_positive", decimalPositive); err != nil {
		return err
	}
	if err := v.RegisterValidation("workflow_action", workflowAction); err != nil {
		return err
	}
	return v.RegisterValidation("workflow_state", workflowState)
}

// decimalValue lets the validator see a decimal as its string form.
func decimalValue(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		return d.String()
	}
	return nil
}

func decimalPositive(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}
	return d.IsPositive()
}

func workflowAction(fl validator.FieldLevel) bool {
	return domain.Action(fl.Field().String()).IsDecision()
}

func workflowState(fl validator.FieldLevel) bool {
	return domain.WorkflowState(fl.Field().String()).Valid()
}
