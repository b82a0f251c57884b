package dto

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// validatorInstance construye (una sola vez) el validador con soporte para decimal.Decimal
// y nombres de campo tomados del tag json.
func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		// decimal.Decimal llega a las validaciones como su signo (-1, 0, 1): comparar contra cero
		// es exacto sin pasar por float64.
		v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				return d.Sign()
			}
			return nil
		}, decimal.Decimal{})
		_ = v.RegisterValidation("positive", func(fl validator.FieldLevel) bool {
			return signOf(fl.Field()) > 0
		})
		_ = v.RegisterValidation("nonnegative", func(fl validator.FieldLevel) bool {
			return signOf(fl.Field()) >= 0
		})
		validate = v
	})
	return validate
}

// signOf lee el signo de un decimal ya convertido por la custom type func (o de un decimal directo).
func signOf(field reflect.Value) int {
	switch field.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(field.Int())
	}
	if d, ok := field.Interface().(decimal.Decimal); ok {
		return d.Sign()
	}
	return -1
}

// Validate valida los tags `validate` de in y traduce el primer fallo a *domain.ValidationError.
func Validate(in any) error {
	err := validatorInstance().Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return domain.NewValidationError(fieldPath(fe.Namespace()), reasonFor(fe))
	}
	return domain.NewValidationError("", err.Error())
}

// ValidateID valida un identificador recibido por ruta.
func ValidateID(field, id string) error {
	if err := validatorInstance().Var(id, "required,uuid"); err != nil {
		return domain.NewValidationError(field, "no es un UUID válido")
	}
	return nil
}

// fieldPath quita el nombre del struct raíz: "CreateReceiptRequest.lines[0].quantity" -> "lines[0].quantity".
func fieldPath(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func reasonFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "es requerido"
	case "min":
		if fe.Kind() == reflect.Slice {
			return "debe tener al menos " + fe.Param() + " elemento(s)"
		}
		return "debe tener al menos " + fe.Param() + " caracteres"
	case "max":
		return "excede el máximo de " + fe.Param()
	case "gt":
		return "debe ser mayor que " + fe.Param()
	case "gte":
		return "debe ser mayor o igual que " + fe.Param()
	case "positive":
		return "debe ser mayor que 0"
	case "nonnegative":
		return "debe ser mayor o igual que 0"
	case "email":
		return "no es un email válido"
	case "uuid":
		return "no es un UUID válido"
	case "oneof":
		return "debe ser uno de: " + fe.Param()
	default:
		return "no es válido (" + fe.Tag() + ")"
	}
}
