// Package validation turns request payloads into field -> message maps.
package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Trimmer is implemented by payloads that normalize whitespace before validation.
type Trimmer interface {
	Trim()
}

// Messager supplies the message for each "field.tag" failure.
type Messager interface {
	ValidationMessages() map[string]string
}

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// Validate trims and checks payload, returning the errors keyed by JSON field name and
// whether the payload is valid. Only the first failing rule per field is reported.
func Validate(payload any) (map[string]string, bool) {
	if t, ok := payload.(Trimmer); ok {
		t.Trim()
	}

	errs := map[string]string{}
	err := instance().Struct(payload)
	if err == nil {
		return errs, true
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs["payload"] = "Invalid payload"
		return errs, false
	}

	var msgs map[string]string
	if m, ok := payload.(Messager); ok {
		msgs = m.ValidationMessages()
	}
	for _, fe := range verrs {
		field := fe.Field()
		if _, seen := errs[field]; seen {
			continue
		}
		if msg, ok := msgs[field+"."+fe.Tag()]; ok {
			errs[field] = msg
			continue
		}
		errs[field] = field + " is invalid"
	}
	return errs, false
}
