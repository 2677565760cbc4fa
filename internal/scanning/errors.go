package scanning

import "fmt"

// DecodeError reports an image that could not be read or decoded.
// It aborts the whole scan.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding image: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// RecognitionError wraps a failure of the recognition engine.
type RecognitionError struct {
	Variant string
	Profile string
	Err     error
}

func (e *RecognitionError) Error() string {
	if e.Variant == "" {
		return fmt.Sprintf("recognizing with profile %s: %v", e.Profile, e.Err)
	}
	return fmt.Sprintf("recognizing variant %s with profile %s: %v", e.Variant, e.Profile, e.Err)
}

func (e *RecognitionError) Unwrap() error {
	return e.Err
}
