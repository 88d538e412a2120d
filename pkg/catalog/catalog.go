// Package catalog holds the pieces shared by the GHCN-Daily and NSRDB station
// catalogs: the error taxonomy, filter validation and matching, and the soft
// lookup used for data files that may legitimately be absent.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

var (
	// ErrConfiguration is returned when a catalog's base directory is unusable.
	ErrConfiguration = errors.New("configuration error")
	// ErrValidation is returned for malformed filter or id arguments.
	ErrValidation = errors.New("validation error")
	// ErrNotFound is returned when a required data file does not exist.
	ErrNotFound = errors.New("not found")
)

// CheckDir verifies that dir exists and is a directory.
func CheckDir(dir, what string) error {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s directory does not exist: %s", ErrConfiguration, what, dir)
		}
		return fmt.Errorf("%w: %s directory %s: %v", ErrConfiguration, what, dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s path is not a directory: %s", ErrConfiguration, what, dir)
	}
	return nil
}

// ValidateRegionCode accepts an empty code (no filter) or exactly two ASCII
// letters in any case.
func ValidateRegionCode(code string) error {
	if code == "" {
		return nil
	}
	if len(code) != 2 || !isLetter(code[0]) || !isLetter(code[1]) {
		return fmt.Errorf("%w: region code must be two letters, got %q", ErrValidation, code)
	}
	return nil
}

func isLetter(b byte) bool {
	return ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}

// MatchName reports whether pattern occurs in name, ignoring case. The pattern
// is a literal; an empty pattern matches everything.
func MatchName(name, pattern string) bool {
	if pattern == "" {
		return true
	}
	return strings.Contains(strings.ToLower(name), strings.ToLower(pattern))
}

// MatchRegion reports whether a station's state code starts with code,
// ignoring case. An empty code matches everything.
func MatchRegion(state, code string) bool {
	if code == "" {
		return true
	}
	return len(state) >= len(code) && strings.EqualFold(state[:len(code)], code)
}

// OpenOptional opens path for reading. A missing file is not an error: it
// returns a nil file and found == false.
func OpenOptional(path string) (f *os.File, found bool, err error) {
	f, err = os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, false, err
	}
	if info.IsDir() {
		f.Close()
		return nil, false, nil
	}
	return f, true, nil
}
