// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"ledgerly/internal/balance"
	"ledgerly/internal/models"
)

var hexColorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("currency", currencyValidator(v))
		_ = v.RegisterValidation("hex_color", validateHexColor)
		_ = v.RegisterValidation("category_type", validateCategoryType)
		_ = v.RegisterValidation("entity_type", validateEntityType)
		_ = v.RegisterValidation("report_view", validateReportView)
	}
}

// currencyValidator accepts ISO 4217 codes in any letter case, delegating
// the code list to the engine's built-in iso4217 tag.
func currencyValidator(v *validator.Validate) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return v.Var(strings.ToUpper(fl.Field().String()), "iso4217") == nil
	}
}

func validateHexColor(fl validator.FieldLevel) bool {
	return hexColorRegex.MatchString(fl.Field().String())
}

func validateCategoryType(fl validator.FieldLevel) bool {
	switch models.CategoryType(fl.Field().String()) {
	case models.CategoryTypeIncome, models.CategoryTypeExpense:
		return true
	}
	return false
}

func validateEntityType(fl validator.FieldLevel) bool {
	_, err := balance.ParseEntityType(fl.Field().String())
	return err == nil
}

func validateReportView(fl validator.FieldLevel) bool {
	_, err := balance.ParseView(fl.Field().String())
	return err == nil
}
