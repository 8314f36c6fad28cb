package mcpservice

// OutcomeKind tags the result of a dispatch.
type OutcomeKind int

const (
	// OutcomeOK carries a handler result.
	OutcomeOK OutcomeKind = iota
	// OutcomeMethodNotFound means neither the alias table nor the registry
	// knew the method.
	OutcomeMethodNotFound
	// OutcomeApplicationError means the handler rejected or failed the call.
	OutcomeApplicationError
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeOK:
		return "ok"
	case OutcomeMethodNotFound:
		return "method_not_found"
	case OutcomeApplicationError:
		return "application_error"
	default:
		return "unknown"
	}
}

// Outcome is the tagged result of Server.Dispatch. Result is set only for
// OutcomeOK; Message only for the failure kinds.
type Outcome struct {
	Kind    OutcomeKind
	Result  any
	Message string
}

// Success wraps a handler result.
func Success(result any) Outcome {
	return Outcome{Kind: OutcomeOK, Result: result}
}

// MethodNotFound reports an unknown method using the spelling the caller sent.
func MethodNotFound(original string) Outcome {
	return Outcome{Kind: OutcomeMethodNotFound, Message: "Method not found: " + original}
}

// ApplicationError wraps a handler failure.
func ApplicationError(err error) Outcome {
	return Outcome{Kind: OutcomeApplicationError, Message: err.Error()}
}

// OK reports whether the outcome carries a result.
func (o Outcome) OK() bool { return o.Kind == OutcomeOK }
