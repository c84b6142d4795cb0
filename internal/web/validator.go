package web

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"dzkitab/internal/announce"
)

var validate *validator.Validate

var dzPhone = regexp.MustCompile(`^(\+213|0)[5-7][0-9]{8}$`)

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	validate.RegisterValidation("isbn", validateISBN)
	validate.RegisterValidation("dz_phone", validatePhone)
}

func validateISBN(fl validator.FieldLevel) bool {
	_, err := announce.NormalizeISBN(fl.Field().String())
	return err == nil
}

func validatePhone(fl validator.FieldLevel) bool {
	phone := strings.NewReplacer(" ", "", "-", "", ".", "").Replace(fl.Field().String())
	return dzPhone.MatchString(phone)
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func ValidateStruct(s any) []ValidationError {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var errs []ValidationError
	for _, err := range err.(validator.ValidationErrors) {
		field := err.Field()
		param := err.Param()

		var message string
		switch err.Tag() {
		case "required":
			message = "Ce champ est obligatoire"
		case "email":
			message = "Adresse email invalide"
		case "min":
			message = fmt.Sprintf("Au moins %s caractères", param)
		case "max":
			message = fmt.Sprintf("Au plus %s caractères", param)
		case "isbn":
			message = "L'ISBN doit contenir 10 ou 13 chiffres"
		case "dz_phone":
			message = "Numéro de téléphone invalide (ex. 0551234567)"
		case "gt", "gte":
			message = fmt.Sprintf("Doit être supérieur à %s", param)
		default:
			message = "Valeur invalide"
		}

		errs = append(errs, ValidationError{Field: field, Message: message})
	}
	return errs
}

// fieldErrors indexes validation errors by field for the templates.
func fieldErrors(errs []ValidationError) map[string]string {
	out := make(map[string]string, len(errs))
	for _, e := range errs {
		if _, seen := out[e.Field]; !seen {
			out[e.Field] = e.Message
		}
	}
	return out
}
