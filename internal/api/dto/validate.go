package dto

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/spec-kit/assignment-service/internal/domain"
	apperrors "github.com/spec-kit/assignment-service/pkg/util/errorutil"
)

// MissingFields is the message for absent required fields.
const MissingFields = "Missing required fields"

var (
	validate   *validator.Validate
	translator ut.Translator

	// custom validation tags
	roleTag     = "role"
	notBlankTag = "notblank"
)

func init() {
	validate = validator.New()

	english := en.New()
	uni := ut.New(english, english)
	translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(roleTag, roleValidation)
	_ = validate.RegisterValidation(notBlankTag, notBlankValidation)

	registerFn := func(ut.Translator) error { return nil }
	for _, tag := range []string{roleTag, notBlankTag} {
		_ = validate.RegisterTranslation(tag, translator, registerFn, translateCustom)
	}
}

func translateCustom(_ ut.Translator, fe validator.FieldError) string {
	switch fe.Tag() {
	case roleTag:
		return "must be one of Student, Faculty, Contributor"
	case notBlankTag:
		return "this field cannot be blank"
	default:
		return ""
	}
}

func roleValidation(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.String {
		return false
	}
	return domain.Role(fl.Field().String()).Valid()
}

func notBlankValidation(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.String {
		return false
	}
	return strings.TrimSpace(fl.Field().String()) != ""
}

// Validate checks req against its struct tags. A failing required tag always
// yields MissingFields; other tags use messages[tag] when present and the
// translated field error otherwise. Per-field messages go in the details.
func Validate(req interface{}, messages map[string]string) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.NewValidationError(MissingFields, nil)
	}

	details := make(map[string]any, len(fieldErrs))
	message := ""
	for _, fe := range fieldErrs {
		details[fe.Field()] = fe.Translate(translator)
		switch {
		case fe.Tag() == "required":
			message = MissingFields
		case message != "":
		case messages[fe.Tag()] != "":
			message = messages[fe.Tag()]
		default:
			message = fe.Field() + " " + fe.Translate(translator)
		}
	}
	return apperrors.NewValidationError(message, details)
}
