package datasource

import "fmt"

// StatusError is returned when an upstream answered with a non-success HTTP
// status or a failure envelope. The status code is embedded in the message so
// downstream pattern matching keeps working on wrapped errors.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("API error (status %d)", e.Status)
	}
	return fmt.Sprintf("API error (status %d): %s", e.Status, e.Message)
}
