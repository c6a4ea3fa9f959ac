package web

// formErrors collects per-field validation messages, re-rendered next to
// the offending inputs.
type formErrors map[string]string

func (e formErrors) Any() bool {
	return len(e) > 0
}

func (e formErrors) require(field, value, message string) {
	if value == "" {
		e[field] = message
	}
}
