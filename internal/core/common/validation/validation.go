package validation

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	errors "github.com/frahmantamala/expense-tracker/internal"
	"github.com/shopspring/decimal"
)

const (
	MsgAmountEmpty       = "Amount cannot be empty."
	MsgAmountNotNumeric  = "Please enter a valid numeric amount."
	MsgAmountNotPositive = "Amount must be greater than zero."
	MsgInvalidCategory   = "Please select a valid category."
	MsgInvalidDate       = "Please select a valid date."

	MaxDescriptionLength  = 500
	MsgDescriptionTooLong = "Description must not exceed 500 characters."
)

const (
	maxAmountLength   = 64
	maxAmountExponent = 400
)

type ValidatorFunc func(interface{}) *errors.AppError

type FieldValidator struct {
	FieldName  string
	Value      interface{}
	Validators []ValidatorFunc
}

type ValidationBuilder struct {
	fields []*FieldValidator
}

func NewValidator() *ValidationBuilder {
	return &ValidationBuilder{
		fields: make([]*FieldValidator, 0),
	}
}

func (v *ValidationBuilder) Field(name string, value interface{}) *FieldValidator {
	fv := &FieldValidator{
		FieldName:  name,
		Value:      value,
		Validators: make([]ValidatorFunc, 0),
	}
	v.fields = append(v.fields, fv)
	return fv
}

// Required fails on blank strings (after trimming) and zero times.
func (fv *FieldValidator) Required(message string, code errors.ErrorCode) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		switch v := value.(type) {
		case string:
			if strings.TrimSpace(v) == "" {
				return errors.NewValidationFieldError(fv.FieldName, message, code)
			}
		case time.Time:
			if v.IsZero() {
				return errors.NewValidationFieldError(fv.FieldName, message, code)
			}
		case nil:
			return errors.NewValidationFieldError(fv.FieldName, message, code)
		}
		return nil
	})
	return fv
}

// Numeric fails when a string value does not parse as an amount. When into
// is non-nil the parsed float64 is stored there, so later rules and callers
// see exactly the value that will be persisted.
func (fv *FieldValidator) Numeric(message string, code errors.ErrorCode, into *float64) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		v, ok := value.(string)
		if !ok {
			return nil
		}
		d, err := ParseAmount(v)
		if err != nil {
			return errors.NewValidationFieldError(fv.FieldName, message, code)
		}
		if into != nil {
			*into = d.InexactFloat64()
		}
		return nil
	})
	return fv
}

// Positive fails when the numeric value is not > 0. With a pointer the value
// is read when the rule runs, so it can follow a Numeric rule on the same
// field.
func (fv *FieldValidator) Positive(message string, code errors.ErrorCode) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		var positive bool
		switch v := value.(type) {
		case *float64:
			positive = v != nil && *v > 0
		case float64:
			positive = v > 0
		case int64:
			positive = v > 0
		default:
			return nil
		}
		if !positive {
			return errors.NewValidationFieldError(fv.FieldName, message, code)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) OneOf(options []string, message string, code errors.ErrorCode) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		v, ok := value.(string)
		if !ok {
			return nil
		}
		for _, opt := range options {
			if v == opt {
				return nil
			}
		}
		return errors.NewValidationFieldError(fv.FieldName, message, code)
	})
	return fv
}

// MaxLength fails when a string is longer than max runes.
func (fv *FieldValidator) MaxLength(max int, message string, code errors.ErrorCode) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if v, ok := value.(string); ok && utf8.RuneCountInString(v) > max {
			return errors.NewValidationFieldError(fv.FieldName, message, code)
		}
		return nil
	})
	return fv
}

// Validate runs every validator of every field and aggregates the failures.
func (v *ValidationBuilder) Validate() *errors.AppError {
	var validationErrors []errors.ValidationError

	for _, field := range v.fields {
		for _, validator := range field.Validators {
			if err := validator(field.Value); err != nil {
				validationErrors = append(validationErrors, toValidationErrors(field.FieldName, err)...)
			}
		}
	}

	if len(validationErrors) > 0 {
		return errors.NewValidationError("Validation failed", errors.ErrCodeValidationFailed).
			WithDetails(errors.ValidationErrors{Errors: validationErrors})
	}

	return nil
}

// First runs validators in declaration order and returns the first failure.
func (v *ValidationBuilder) First() *errors.AppError {
	for _, field := range v.fields {
		for _, validator := range field.Validators {
			if err := validator(field.Value); err != nil {
				return err
			}
		}
	}
	return nil
}

func toValidationErrors(field string, appErr *errors.AppError) []errors.ValidationError {
	if details, ok := appErr.Details.(errors.ValidationErrors); ok {
		return details.Errors
	}
	return []errors.ValidationError{{
		Field:   field,
		Message: appErr.Message,
		Code:    string(appErr.Code),
	}}
}

// ParseAmount parses user-entered amount text. Surrounding whitespace is
// ignored. NaN, overlong input, exponents beyond maxAmountExponent and values
// outside the float64 range are rejected.
func ParseAmount(text string) (decimal.Decimal, error) {
	text = strings.TrimSpace(text)
	if len(text) > maxAmountLength {
		return decimal.Zero, fmt.Errorf("amount is longer than %d characters", maxAmountLength)
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, err
	}
	if exp := d.Exponent(); exp > maxAmountExponent || exp < -maxAmountExponent {
		return decimal.Zero, fmt.Errorf("amount %q is out of range", text)
	}
	if math.IsInf(d.InexactFloat64(), 0) {
		return decimal.Zero, fmt.Errorf("amount %q is out of range", text)
	}
	return d, nil
}

// ValidateAmountText applies the amount rules in order and returns the amount
// as it will be stored. The text is parsed once.
func ValidateAmountText(text string) (float64, *errors.AppError) {
	var amount float64
	validator := NewValidator()
	validator.Field("amount", text).
		Required(MsgAmountEmpty, errors.ErrCodeAmountEmpty).
		Numeric(MsgAmountNotNumeric, errors.ErrCodeAmountNotNumeric, &amount)
	validator.Field("amount", &amount).
		Positive(MsgAmountNotPositive, errors.ErrCodeAmountNotPositive)
	if err := validator.First(); err != nil {
		return 0, err
	}
	return amount, nil
}

// ValidateDescription collects every description rule failure.
func ValidateDescription(description string) *errors.AppError {
	validator := NewValidator()
	validator.Field("description", description).
		MaxLength(MaxDescriptionLength, MsgDescriptionTooLong, errors.ErrCodeDescriptionTooLong)
	return validator.Validate()
}

func ValidateCategory(category string, allowed []string) *errors.AppError {
	validator := NewValidator()
	validator.Field("category", category).
		Required(MsgInvalidCategory, errors.ErrCodeInvalidCategory).
		OneOf(allowed, MsgInvalidCategory, errors.ErrCodeInvalidCategory)
	return validator.First()
}
