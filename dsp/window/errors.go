package window

import (
	"errors"
	"fmt"
)

var (
	errEmptyCoeffs      = errors.New("window coefficients must not be empty")
	errZeroCoherentGain = errors.New("window coherent gain is zero")
)

func errUnknownType(name string) error {
	return fmt.Errorf("unknown window type %q", name)
}
