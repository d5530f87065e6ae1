package profile

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrInvalidName is wrapped by every ValidateName failure.
var ErrInvalidName = errors.New("invalid profile name")

// A leading '-' would read as a flag when passed to nikkid.
var nameRegexp = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,63}$`)

// ValidateName checks that name is usable as a directory under BaseDir.
func ValidateName(name string) error {
	if !nameRegexp.MatchString(name) {
		return fmt.Errorf("%w %q: use 1-64 of a-z 0-9 _ - and start with a letter or digit", ErrInvalidName, name)
	}
	return nil
}
