package telemetry

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// typeRule restricts a type to ValidTypes.
var typeRule = "oneof=" + joinTypes(" ")

// Validate checks q in fail-fast order: presence of both fields first, then the type.
func (q Query) Validate() error {
	if err := validate.Struct(q); err != nil {
		return validationError("Missing required parameters: type and location")
	}
	if err := validate.Var(string(q.Type), typeRule); err != nil {
		return validationError(fmt.Sprintf("Invalid telemetry type. Must be one of: %s", joinTypes(", ")))
	}
	return nil
}
