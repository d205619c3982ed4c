package filesystem

import (
	"os"
)

// Checker reports whether input paths exist and what kind they are
type Checker struct{}

// NewChecker creates a new filesystem checker
func NewChecker() *Checker {
	return &Checker{}
}

// Exists returns true if the file exists
func (c *Checker) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IsDir returns true if path exists and is a directory
func (c *Checker) IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
