package chart

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

var ErrUnsafeName = errors.New("unsafe chart file name")

var imageSuffixes = []string{".png", ".jpg", ".jpeg"}

var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// IsImageName reports whether name ends in one of the served image suffixes.
func IsImageName(name string) bool {
	lower := strings.ToLower(name)
	for _, s := range imageSuffixes {
		if strings.HasSuffix(lower, s) {
			return true
		}
	}
	return false
}

// SafeName accepts a bare image file name and rejects anything that could
// address a file outside the chart directory.
func SafeName(name string) (string, error) {
	switch {
	case name == "":
		return "", fmt.Errorf("%w: empty", ErrUnsafeName)
	case strings.Contains(name, ".."):
		return "", fmt.Errorf("%w: %q contains a parent reference", ErrUnsafeName, name)
	case strings.ContainsAny(name, `/\`), filepath.IsAbs(name), filepath.VolumeName(name) != "":
		return "", fmt.Errorf("%w: %q is not a bare file name", ErrUnsafeName, name)
	case !namePattern.MatchString(name):
		return "", fmt.Errorf("%w: %q has unexpected characters", ErrUnsafeName, name)
	case !IsImageName(name):
		return "", fmt.Errorf("%w: %q is not an image", ErrUnsafeName, name)
	}
	return name, nil
}

// BaseName reduces a rendered chart path to its file name. The path must sit
// directly inside dir.
func BaseName(path, dir string) (string, error) {
	if dir != "" {
		rel, err := filepath.Rel(filepath.Clean(dir), filepath.Clean(path))
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrUnsafeName, err)
		}
		if rel != filepath.Base(rel) || rel == ".." || rel == "." {
			return "", fmt.Errorf("%w: %q is outside the chart directory", ErrUnsafeName, path)
		}
	}
	return SafeName(filepath.Base(path))
}
