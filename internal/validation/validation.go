package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/yukikurage/task-user-api/internal/dto"
	"github.com/yukikurage/task-user-api/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Validator checks request payloads. It is built once at startup and is safe
// for concurrent use.
type Validator struct {
	validate *validator.Validate
}

// New builds a Validator with the objectid rule and JSON field names
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if opt, ok := field.Interface().(dto.OptionalString); ok {
			return opt.Value
		}
		return nil
	}, dto.OptionalString{})

	// registration only fails for an empty tag or nil func
	_ = v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
		return IsObjectID(fl.Field().String())
	})

	return &Validator{validate: v}
}

// IsObjectID reports whether s is a 24 character hex ObjectID
func IsObjectID(s string) bool {
	return primitive.IsValidObjectID(s)
}

// Struct validates s and returns a *services.ValidationError listing every
// rejected field.
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make([]services.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, services.FieldError{
			Field:   fieldPath(fe),
			Message: message(fe),
		})
	}
	return &services.ValidationError{Fields: fields}
}

// fieldPath drops the struct name from the namespace: CreateUserRequest.pendingTasks[0]
// becomes pendingTasks[0].
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	field := fieldPath(fe)
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%q is required", field)
	case "email":
		return fmt.Sprintf("%q must be a valid email", field)
	case "objectid":
		return fmt.Sprintf("%q must be a valid id", field)
	case "min":
		return fmt.Sprintf("%q is not allowed to be empty", field)
	default:
		return fmt.Sprintf("%q failed on the %q rule", field, fe.Tag())
	}
}
