package engine

import "errors"

// errRetryLimit is returned by Retry when every attempt was rejected.
var errRetryLimit = errors.New("retry limit reached")

// Retry calls try until it accepts a value, fails, or limit attempts have
// been made. It returns the accepted value and the number of attempts used.
// When the bound is hit the returned error is errRetryLimit; callers turn it
// into an error carrying their own context.
//
// try receives the zero-based attempt number. Returning a non-nil error
// stops the loop immediately.
func Retry[T any](limit int, try func(attempt int) (T, bool, error)) (T, int, error) {
	var zero T
	for attempt := 0; attempt < limit; attempt++ {
		value, ok, err := try(attempt)
		if err != nil {
			return zero, attempt + 1, err
		}
		if ok {
			return value, attempt + 1, nil
		}
	}
	return zero, limit, errRetryLimit
}
