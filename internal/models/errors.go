package models

import "fmt"

// ConfigurationError reports a required field that no configuration layer
// supplied (no default, no file value, no override).
type ConfigurationError struct {
	Field string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration incomplète: champ requis %q absent", e.Field)
}

// InvalidValueError reports a negative value on a field where only
// non-negative values are meaningful.
type InvalidValueError struct {
	Field string
	Value float64
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("valeur invalide pour %q: %g", e.Field, e.Value)
}
