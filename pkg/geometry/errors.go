package geometry

import "fmt"

// InvalidGeoJSONError is returned when input text fails to parse as a
// recognized GeoJSON object, per spec: missing/unknown type, malformed
// coordinates, non-finite values, or an unclosed/too-short polygon ring.
type InvalidGeoJSONError struct {
	Reason string
}

func (e *InvalidGeoJSONError) Error() string {
	return fmt.Sprintf("invalid GeoJSON: %s", e.Reason)
}

func invalidf(format string, args ...any) error {
	return &InvalidGeoJSONError{Reason: fmt.Sprintf(format, args...)}
}
