// Package bind validates request inputs with a shared validator and maps
// failures to project errors
package bind

import (
	"net/url"
	"reflect"
	"strings"
	"sync"

	perr "weatherjar/internal/platform/errors"
	"weatherjar/internal/platform/logger"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// ValidatorSvc holds the singleton validator and its translator
type ValidatorSvc struct {
	Validator  *validator.Validate
	Translator ut.Translator
}

var (
	vOnce sync.Once
	vSvc  *ValidatorSvc
)

// Get returns the validator singleton, building it on first use
func Get() *ValidatorSvc {
	vOnce.Do(func() {
		enLoc := en.New()
		trans, _ := ut.New(enLoc, enLoc).GetTranslator("en")

		v := validator.New(validator.WithRequiredStructEnabled())
		// messages use the query/json name, not the Go field
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, key := range []string{"query", "json"} {
				if tag := strings.Split(fld.Tag.Get(key), ",")[0]; tag != "" && tag != "-" {
					return tag
				}
			}
			return fld.Name
		})
		_ = en_translations.RegisterDefaultTranslations(v, trans)
		registerShort(v, trans, "datetime", "{0} must be a date formatted as {1}")
		registerShort(v, trans, "oneof", "{0} must be one of [{1}]")

		vSvc = &ValidatorSvc{Validator: v, Translator: trans}
	})
	return vSvc
}

// Struct validates v. Date format failures become InvalidDate, the rest Validation.
// The offending field name is attached to the error
func Struct(v any) error {
	err := Get().Validator.Struct(v)
	if err == nil {
		return nil
	}
	if inv, ok := err.(*validator.InvalidValidationError); ok {
		logger.Get().Error().Err(inv).Msg("validator internal error")
		return perr.Newf(perr.ErrorCodeValidation, "validation error")
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return perr.Wrap(err, perr.ErrorCodeValidation, "validation error")
	}
	fe := verrs[0]
	code := perr.ErrorCodeValidation
	if fe.Tag() == "datetime" {
		code = perr.ErrorCodeInvalidDate
	}
	return perr.WithField(perr.Newf(code, "%s", fe.Translate(Get().Translator)), fe.Field())
}

// Query fills a flat struct of string fields from URL query values using the
// `query` tag, then validates it
func Query[T any](q url.Values) (T, error) {
	var dst T
	rv := reflect.ValueOf(&dst).Elem()
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		name := strings.Split(f.Tag.Get("query"), ",")[0]
		if name == "" || name == "-" || f.Type.Kind() != reflect.String {
			continue
		}
		rv.Field(i).SetString(strings.TrimSpace(q.Get(name)))
	}
	return dst, Struct(dst)
}

func registerShort(v *validator.Validate, trans ut.Translator, tag, text string) {
	_ = v.RegisterTranslation(tag, trans,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			msg, _ := t.T(tag, fe.Field(), fe.Param())
			return msg
		},
	)
}
