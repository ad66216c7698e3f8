// Package validation wraps go-playground/validator with decimal support.
package validation

import (
	"reflect"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ErrInvalid marks every error returned by Struct.
var ErrInvalid = errors.New("invalid input")

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Numeric tags (gte, lte, gt) compare decimals as float64.
		validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				return d.InexactFloat64()
			}
			return nil
		}, decimal.Decimal{})
	})
	return validate
}

// Struct validates v and returns an ErrInvalid-marked error naming every failing field.
func Struct(v any) error {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errors.Mark(errors.Wrap(err, "validate input"), ErrInvalid)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describe(fe))
	}
	return errors.Mark(errors.Newf("%s", strings.Join(msgs, "; ")), ErrInvalid)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gte":
		return fe.Field() + " must be >= " + fe.Param()
	case "lte":
		return fe.Field() + " must be <= " + fe.Param()
	case "gt":
		return fe.Field() + " must be > " + fe.Param()
	case "required":
		return fe.Field() + " is required"
	default:
		return fe.Field() + " failed " + fe.Tag()
	}
}
