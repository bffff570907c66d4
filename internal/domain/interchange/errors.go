package interchange

import "errors"

// ErrInvalidInput is returned when the input record is missing or is not a
// JSON object. It is the only error the builder produces.
var ErrInvalidInput = errors.New("invalid data provided for FHIR export")
