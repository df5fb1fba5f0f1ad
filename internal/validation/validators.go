package validation

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/campify/campify-api/internal/models"
	"github.com/go-playground/validator/v10"
)

// MaxTagNameLength caps user supplied tag names.
const MaxTagNameLength = 64

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	if err := Validate.RegisterValidation("route_type", validateRouteType); err != nil {
		panic(fmt.Sprintf("failed to register route_type validator: %v", err))
	}
	if err := Validate.RegisterValidation("tag_name", validateTagName); err != nil {
		panic(fmt.Sprintf("failed to register tag_name validator: %v", err))
	}
}

func validateRouteType(fl validator.FieldLevel) bool {
	switch models.RouteType(fl.Field().Int()) {
	case models.RouteTypeEquipped, models.RouteTypeWild:
		return true
	default:
		return false
	}
}

func validateTagName(fl validator.FieldLevel) bool {
	return ValidateTagName(fl.Field().String()) == nil
}

// ValidateTagName checks a tag name is non-blank, short, and free of
// control characters.
func ValidateTagName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("tag name cannot be empty")
	}
	if utf8.RuneCountInString(name) > MaxTagNameLength {
		return fmt.Errorf("tag name exceeds %d characters", MaxTagNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return fmt.Errorf("tag name contains control characters")
		}
	}
	return nil
}

// ValidateRouteType parses the query form of a route type.
func ValidateRouteType(value string) (models.RouteType, error) {
	rt, ok := models.ParseRouteType(value)
	if !ok {
		return 0, fmt.Errorf("invalid type: %s (must be 'equipped' or 'wild')", value)
	}
	return rt, nil
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	// Trim whitespace
	text = strings.TrimSpace(text)

	// Remove control characters except newline and tab
	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}
