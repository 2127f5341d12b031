package handlers

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// PIX key shapes: CPF (11 digits), CNPJ (14 digits), E.164 phone, email, or
// a random EVP key (UUID).
var (
	pixDigitsRe = regexp.MustCompile(`^\d{11}$|^\d{14}$`)
	pixPhoneRe  = regexp.MustCompile(`^\+[1-9]\d{7,14}$`)
	pixEmailRe  = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	pixEVPRe    = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
)

func validatePixKey(fl validator.FieldLevel) bool {
	key := fl.Field().String()
	return pixDigitsRe.MatchString(key) ||
		pixPhoneRe.MatchString(key) ||
		pixEmailRe.MatchString(key) ||
		pixEVPRe.MatchString(key)
}

// registerCustomValidators wires domain-specific binding tags into Gin's
// validator engine.
func registerCustomValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("pixkey", validatePixKey)
	}
}
