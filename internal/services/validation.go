package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"toll-system/internal/models"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// В сообщениях используются JSON-имена полей
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("vehicle_type", func(fl validator.FieldLevel) bool {
		return models.VehicleType(fl.Field().String()).IsValid()
	})
	return v
}

// validationMessage формирует сообщение по первой ошибке валидации.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}

	first := verrs[0]
	switch first.Tag() {
	case "required":
		return first.Field() + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", first.Field(), first.Param())
	case "vehicle_type":
		return fmt.Sprintf("unknown vehicle type %q", first.Value())
	default:
		return first.Field() + " is invalid"
	}
}
