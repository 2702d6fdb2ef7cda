package shared

import (
	"net/http"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"roster/internal/domain/schedule"
	"roster/internal/transport/http/api"
)

type ValidationIssue struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

var (
	validate   *validator.Validate
	translator ut.Translator
)

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// hhmm accepts a zero-padded wall-clock time, "00:00" through "24:00".
	_ = validate.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		_, err := schedule.ToMinutes(fl.Field().String())
		return err == nil
	})
	_ = validate.RegisterTranslation("hhmm", translator,
		func(ut ut.Translator) error {
			return ut.Add("hhmm", "{0} must be a time in HH:MM format", true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			msg, err := ut.T("hhmm", fe.Field())
			if err != nil {
				return fe.Field() + " must be a time in HH:MM format"
			}
			return msg
		},
	)
}

// Check validates a decoded request payload and returns the field issues,
// nil when the payload is valid.
func Check(payload any) []ValidationIssue {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return []ValidationIssue{{Field: "", Reason: err.Error()}}
	}
	issues := make([]ValidationIssue, 0, len(validationErrors))
	for _, fe := range validationErrors {
		issues = append(issues, ValidationIssue{
			Field:  fieldName(fe),
			Reason: fe.Translate(translator),
		})
	}
	return issues
}

func fieldName(fe validator.FieldError) string {
	// StructNamespace looks like "createRequest.DateStart"; keep the leaf.
	parts := strings.Split(fe.StructNamespace(), ".")
	name := parts[len(parts)-1]
	if name == "" {
		return fe.Field()
	}
	return strings.ToLower(name[:1]) + name[1:]
}

func FailValidation(w http.ResponseWriter, requestID string, issues []ValidationIssue) {
	api.FailWithDetails(
		w,
		http.StatusBadRequest,
		"validation_error",
		"payload validation failed",
		map[string]any{"fields": issues},
		requestID,
	)
}
