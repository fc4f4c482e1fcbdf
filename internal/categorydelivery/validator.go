package categorydelivery

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var hexColorRegex = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// ValidHexColor validates a 6-digit hex colour such as #10B981.
var ValidHexColor validator.Func = func(fl validator.FieldLevel) bool {
	if c, ok := fl.Field().Interface().(string); ok {
		return hexColorRegex.MatchString(c)
	}

	return false
}
