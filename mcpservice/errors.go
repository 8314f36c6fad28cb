package mcpservice

import "fmt"

// NotFoundError indicates a requested item (tool, resource, prompt) doesn't
// exist. It is reported as an application error, not as a missing method.
type NotFoundError struct {
	Type string // "tool", "resource", "prompt"
	Name string // identifier that wasn't found
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Unknown %s: %s", e.Type, e.Name)
}

// InvalidParamsError indicates that the provided parameters are invalid.
type InvalidParamsError struct {
	Field   string // which field is invalid, if known
	Message string
}

func (e *InvalidParamsError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("invalid parameter %s", e.Field)
}

// MissingParam reports an absent top-level parameter.
func MissingParam(field string) *InvalidParamsError {
	return &InvalidParamsError{Field: field, Message: fmt.Sprintf("Missing '%s'", field)}
}

// MissingArgument reports an absent required tool argument.
func MissingArgument(field string) *InvalidParamsError {
	return &InvalidParamsError{Field: field, Message: fmt.Sprintf("Missing required argument: '%s'", field)}
}
