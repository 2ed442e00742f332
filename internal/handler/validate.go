package handler

import (
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/labstack/echo/v4"
)

var (
	validate   *validator.Validate
	translator ut.Translator

	notBlankTag  = "notblank"
	notBlankText = "{0} cannot be blank"
)

func init() {
	validate = validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// report JSON names rather than Go field names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(notBlankTag, func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = validate.RegisterTranslation(notBlankTag, translator,
		func(t ut.Translator) error { return t.Add(notBlankTag, notBlankText, false) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(notBlankTag, fe.Field())
			return s
		},
	)
}

// Validator plugs the package validator into Echo.
type Validator struct{}

func (Validator) Validate(i any) error { return validate.Struct(i) }

// bind decodes the request into req and validates it.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return errBadRequest("invalid body")
	}
	return validate.Struct(req)
}
