// Package errors provides structured error types for better observability
// and programmatic error handling across the application.
//
// Example usage:
//
//	err := errors.WrapWithContext(
//	    errors.ErrCodeInternal,
//	    "failed to dispatch request",
//	    cause,
//	    map[string]interface{}{
//	        "method": r.Method,
//	        "path": r.URL.Path,
//	    },
//	)
package errors
