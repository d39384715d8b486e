package models

// ConfigurationError indicates invalid user-supplied configuration
// (bad pattern, unknown policy, inverted bounds). It is fatal and is
// reported before any traversal or sync begins.
type ConfigurationError struct {
	Field   string
	Message string
}

func (e *ConfigurationError) Error() string {
	return "invalid " + e.Field + ": " + e.Message
}

// ValidationError represents an invalid option value
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
