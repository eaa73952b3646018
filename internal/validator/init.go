package validator

import (
	"ctchen222/tictactoe-solo/internal/game"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	// Initialize validation
	validate = validator.New(validator.WithRequiredStructEnabled())
	_ = validate.RegisterValidation("cell", validateCell)
}

func GetValidator() *validator.Validate {
	return validate
}

// validateCell accepts *int and int fields holding a board index.
func validateCell(fl validator.FieldLevel) bool {
	return game.ValidCell(int(fl.Field().Int()))
}
