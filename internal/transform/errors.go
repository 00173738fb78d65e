package transform

import "fmt"

// InvalidFactorError reports a scale factor that is not a positive finite number.
type InvalidFactorError struct {
	Factor float64
}

func (e *InvalidFactorError) Error() string {
	return fmt.Sprintf("scale factor must be positive, got %v", e.Factor)
}

// ErrorKind implements failure.Classifier.
func (e *InvalidFactorError) ErrorKind() string { return "invalid_factor" }
