package validation

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Caisse-api/internal/domain"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// get inicializa el validador una sola vez.
// decimal.Decimal se valida como float64 para que gte/gt/lte funcionen sobre montos.
func get() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterCustomTypeFunc(func(v reflect.Value) interface{} {
			d, ok := v.Interface().(decimal.Decimal)
			if !ok {
				return nil
			}
			f, _ := d.Float64()
			return f
		}, decimal.Decimal{})
		_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// Struct valida obj según sus tags `validate`. Los fallos se devuelven envueltos en domain.ErrInvalidInput.
func Struct(obj interface{}) error {
	if err := get().Struct(obj); err != nil {
		var verrs validator.ValidationErrors
		if ok := asValidationErrors(err, &verrs); ok {
			return fmt.Errorf("%w: %s", domain.ErrInvalidInput, Format(verrs))
		}
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return nil
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	verrs, ok := err.(validator.ValidationErrors)
	if ok {
		*target = verrs
	}
	return ok
}

// Format arma un mensaje legible "campo: regla" separado por "; ".
func Format(verrs validator.ValidationErrors) string {
	parts := make([]string, 0, len(verrs))
	for _, e := range verrs {
		parts = append(parts, e.Field()+": "+describe(e))
	}
	return strings.Join(parts, "; ")
}

func describe(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "notblank":
		return "es obligatorio"
	case "min":
		return "mínimo " + e.Param()
	case "max":
		return "máximo " + e.Param()
	case "gte":
		return "debe ser >= " + e.Param()
	case "gt":
		return "debe ser > " + e.Param()
	case "oneof":
		return "debe ser uno de: " + e.Param()
	default:
		return "inválido"
	}
}
