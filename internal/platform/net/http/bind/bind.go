// Package bind provides JSON decode and validation for request DTOs
package bind

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	perr "gavel/internal/platform/errors"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entrans "github.com/go-playground/validator/v10/translations/en"
)

// ValidatorSvc bundles the singleton validator with its translator
type ValidatorSvc struct {
	Validator  *validator.Validate
	Translator ut.Translator
}

var (
	vOnce sync.Once
	vSvc  *ValidatorSvc
)

// Init builds the singleton validator with english translations and
// json tag names in messages
func Init() *ValidatorSvc {
	vOnce.Do(func() {
		enLoc := en.New()
		uni := ut.New(enLoc, enLoc)
		trans, _ := uni.GetTranslator("en")

		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			tag := fld.Tag.Get("json")
			if tag == "" || tag == "-" {
				return fld.Name
			}
			if idx := strings.Index(tag, ","); idx >= 0 {
				tag = tag[:idx]
			}
			return tag
		})
		_ = entrans.RegisterDefaultTranslations(v, trans)

		vSvc = &ValidatorSvc{Validator: v, Translator: trans}
	})
	return vSvc
}

// Get returns the validator singleton, initializing on first use
func Get() *ValidatorSvc {
	if vSvc == nil {
		return Init()
	}
	return vSvc
}

const maxBodyBytes = 1 << 20

// ParseJSON decodes the request body into T, validates it, and maps
// failures to project errors. Safe methods tolerate an empty body
func ParseJSON[T any](r *http.Request) (T, error) {
	var zero T
	defer func() { _ = r.Body.Close() }()

	probe := make([]byte, 1)
	n, _ := r.Body.Read(probe)
	if n == 0 {
		switch r.Method {
		case http.MethodGet, http.MethodDelete, http.MethodHead, http.MethodOptions:
			return zero, nil
		}
		return zero, perr.JSONErrf("empty body")
	}

	reader := io.LimitReader(io.MultiReader(bytes.NewReader(probe[:n]), r.Body), maxBodyBytes)
	dec := json.NewDecoder(reader)
	dec.DisallowUnknownFields()

	var dst T
	if err := dec.Decode(&dst); err != nil {
		return zero, perr.JSONErrf("invalid JSON: %v", err)
	}
	if dec.More() {
		return zero, perr.JSONErrf("unexpected trailing data")
	}

	if err := Get().Validator.Struct(dst); err != nil {
		field, msg := firstFailure(err)
		return zero, perr.WithField(perr.Validationf("%s", msg), field)
	}
	return dst, nil
}

// firstFailure returns the first offending field and its translated message
func firstFailure(err error) (field, message string) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			return fe.Field(), fe.Translate(Get().Translator)
		}
	}
	return "", err.Error()
}
