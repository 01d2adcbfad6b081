package backend

// loadTimeoutError signals the backend never became healthy within the
// retry budget.
type loadTimeoutError struct{ id string }

func (e loadTimeoutError) Error() string { return "load timeout: " + e.id }

// ErrLoadTimeout constructs a loadTimeoutError for the given model id.
func ErrLoadTimeout(id string) error { return loadTimeoutError{id: id} }

// IsLoadTimeout reports whether err indicates a load health-poll timeout.
func IsLoadTimeout(err error) bool {
	_, ok := err.(loadTimeoutError)
	return ok
}

// loadRefusedError signals the start call itself failed.
type loadRefusedError struct {
	id    string
	cause error
}

func (e loadRefusedError) Error() string { return "load refused: " + e.id + ": " + e.cause.Error() }
func (e loadRefusedError) Unwrap() error { return e.cause }

// ErrLoadRefused constructs a loadRefusedError wrapping cause.
func ErrLoadRefused(id string, cause error) error { return loadRefusedError{id: id, cause: cause} }

// IsLoadRefused reports whether err indicates a refused load.
func IsLoadRefused(err error) bool {
	_, ok := err.(loadRefusedError)
	return ok
}

// unavailableError signals the pre-generate health check failed.
type unavailableError struct{ id string }

func (e unavailableError) Error() string { return "backend unavailable: " + e.id }

// ErrUnavailable constructs an unavailableError.
func ErrUnavailable(id string) error { return unavailableError{id: id} }

// IsUnavailable reports whether err indicates a failed pre-generate probe.
func IsUnavailable(err error) bool {
	_, ok := err.(unavailableError)
	return ok
}

// generationTimeoutError signals the generate call exceeded the adapter's
// configured timeout.
type generationTimeoutError struct{ id string }

func (e generationTimeoutError) Error() string { return "generation timeout: " + e.id }

// ErrGenerationTimeout constructs a generationTimeoutError.
func ErrGenerationTimeout(id string) error { return generationTimeoutError{id: id} }

// IsGenerationTimeout reports whether err indicates a generate timeout.
func IsGenerationTimeout(err error) bool {
	_, ok := err.(generationTimeoutError)
	return ok
}

// generationError wraps any other backend-reported generate failure.
type generationError struct {
	id    string
	cause error
}

func (e generationError) Error() string { return "generation failed: " + e.id + ": " + e.cause.Error() }
func (e generationError) Unwrap() error { return e.cause }

// ErrGeneration constructs a generationError wrapping cause.
func ErrGeneration(id string, cause error) error { return generationError{id: id, cause: cause} }

// IsGeneration reports whether err is a backend-reported generate failure.
func IsGeneration(err error) bool {
	_, ok := err.(generationError)
	return ok
}
