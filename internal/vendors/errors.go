package vendors

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDirectory is returned when a vendor directory file is not
	// valid JSON or does not match the profile schema.
	ErrInvalidDirectory = errors.New("invalid vendor directory")

	// ErrProfileNotFound is returned when a profile ID is not in the directory.
	ErrProfileNotFound = errors.New("vendor profile not found")
)

// DirectoryError records a failed operation on a vendor directory file.
type DirectoryError struct {
	// Op is the operation that failed (e.g., "Load", "Save").
	Op string

	// Path is the directory file.
	Path string

	// Err is the underlying error.
	Err error
}

func (e *DirectoryError) Error() string {
	return fmt.Sprintf("vendors: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *DirectoryError) Unwrap() error {
	return e.Err
}

func (e *DirectoryError) Is(target error) bool {
	return errors.Is(e.Err, target)
}
