package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()

	// Use JSON tag names in error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Register custom validations
	registerCustomValidations()
}

func registerCustomValidations() {
	// Student level validation
	validate.RegisterValidation("level", func(fl validator.FieldLevel) bool {
		level := fl.Field().String()
		validLevels := []string{"beginner", "intermediate", "advanced", ""}
		for _, l := range validLevels {
			if level == l {
				return true
			}
		}
		return false
	})

	// Quiz difficulty validation
	validate.RegisterValidation("difficulty", func(fl validator.FieldLevel) bool {
		difficulty := fl.Field().String()
		validDifficulties := []string{"easy", "medium", "hard", ""}
		for _, d := range validDifficulties {
			if difficulty == d {
				return true
			}
		}
		return false
	})
}

// Validate validates a struct and returns a map of field errors
func Validate(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	errors := make(map[string]string)
	for _, err := range err.(validator.ValidationErrors) {
		field := err.Field()
		switch err.Tag() {
		case "required":
			errors[field] = "This field is required"
		case "email":
			errors[field] = "Invalid email format"
		case "min":
			errors[field] = "Value is too short (min: " + err.Param() + ")"
		case "max":
			errors[field] = "Value is too long (max: " + err.Param() + ")"
		case "gte":
			errors[field] = "Value must be at least " + err.Param()
		case "lte":
			errors[field] = "Value must be at most " + err.Param()
		case "level":
			errors[field] = "Invalid level. Must be: beginner, intermediate, or advanced"
		case "difficulty":
			errors[field] = "Invalid difficulty. Must be: easy, medium, or hard"
		default:
			errors[field] = "Invalid value"
		}
	}

	return errors
}

// ValidateVar validates a single variable
func ValidateVar(field interface{}, tag string) error {
	return validate.Var(field, tag)
}
