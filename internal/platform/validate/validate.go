// Package validate owns the process-wide validator and its english messages
package validate

import (
	"reflect"
	"strings"
	"sync"

	perr "curator/internal/platform/errors"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entrans "github.com/go-playground/validator/v10/translations/en"
)

// Svc pairs the validator with its translator
type Svc struct {
	Validator  *validator.Validate
	Translator ut.Translator
}

var (
	once sync.Once
	svc  *Svc
)

// Get returns the singleton, building it on first use
func Get() *Svc {
	once.Do(func() {
		loc := en.New()
		trans, _ := ut.New(loc, loc).GetTranslator("en")

		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(fieldName)
		_ = entrans.RegisterDefaultTranslations(v, trans)

		short(v, trans, "min", "{0} must be at least {1}")
		short(v, trans, "max", "{0} must be at most {1}")
		short(v, trans, "excluded_with", "{0} cannot be combined with {1}")
		short(v, trans, "required_with", "{0} requires {1}")

		svc = &Svc{Validator: v, Translator: trans}
	})
	return svc
}

// fieldName prefers the flag, json, then yaml tag for messages
func fieldName(f reflect.StructField) string {
	for _, key := range []string{"flag", "json", "yaml"} {
		tag := f.Tag.Get(key)
		if tag == "" || tag == "-" {
			continue
		}
		if i := strings.Index(tag, ","); i >= 0 {
			tag = tag[:i]
		}
		return tag
	}
	return f.Name
}

func short(v *validator.Validate, trans ut.Translator, tag, text string) {
	_ = v.RegisterTranslation(tag, trans,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			msg, _ := t.T(tag, fe.Field(), strings.ToLower(fe.Param()))
			return msg
		},
	)
}

// Struct validates s and maps the first failure to a perr validation error carrying the field
func Struct(s any) error {
	err := Get().Validator.Struct(s)
	if err == nil {
		return nil
	}
	field, msg := FieldAndMessage(err)
	return perr.WithField(perr.New(perr.ErrorCodeValidation, msg), field)
}

// FieldAndMessage returns the first failing field and its translated message
func FieldAndMessage(err error) (field, message string) {
	if err == nil {
		return "", ""
	}
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		return verrs[0].Field(), verrs[0].Translate(Get().Translator)
	}
	return "", err.Error()
}
