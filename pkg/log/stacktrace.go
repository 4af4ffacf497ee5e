package log

import (
	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// appendError attaches err, the stack trace recorded by cockroachdb/errors and,
// for typed treeml errors, their structured fields.
func appendError(e *zerolog.Event, err error) *zerolog.Event {
	e = e.AnErr(ErrorKey, err)
	if stacktrace := extractStacktrace(err); stacktrace != "" {
		e = e.Str(StacktraceKey, stacktrace)
	}
	var detail zerolog.LogObjectMarshaler
	if errors.As(err, &detail) {
		e = e.Object(ErrorDetailKey, detail)
	}
	return e
}

// extractStacktrace returns the first safe detail recorded along the error
// chain. errors.WithStack stores the formatted stack there.
func extractStacktrace(err error) string {
	for _, payload := range errors.GetAllSafeDetails(err) {
		for _, detail := range payload.SafeDetails {
			if detail != "" {
				return detail
			}
		}
	}
	return ""
}
