package sim

import (
	"errors"
	"fmt"
)

// ErrUnsupportedCascadeTarget indicates a cascade type with no inner/outer
// loop pairing; only the temperature and power loops can be cascaded.
var ErrUnsupportedCascadeTarget = errors.New("sim: unsupported cascade target loop")

// ErrTuneInProgress indicates an auto-tune was requested while another is
// still pending.
var ErrTuneInProgress = errors.New("sim: auto-tune already in progress")

func errUnsupportedCascade(l Loop) error {
	return fmt.Errorf("%w: %s", ErrUnsupportedCascadeTarget, l)
}
