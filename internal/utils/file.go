package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

var resumeExtensions = []string{".json", ".yaml", ".yml"}

// ValidateInputFile checks that a resume document exists, is a regular file
// and can be opened for reading.
func ValidateInputFile(filename string) error {
	if filename == "" {
		return fmt.Errorf("filename cannot be empty")
	}

	info, err := os.Stat(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file does not exist: %s", filename)
		}
		return fmt.Errorf("cannot access file %s: %w", filename, err)
	}

	if info.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", filename)
	}

	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("cannot read file %s: %w", filename, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close file %s: %w", filename, err)
	}

	return nil
}

// EnsureOutputDir creates the parent directory of an output path when it
// is missing. An empty path means stdout and is always valid.
func EnsureOutputDir(filename string) error {
	if filename == "" {
		return nil
	}

	info, err := os.Stat(filename)
	if err == nil && info.IsDir() {
		return fmt.Errorf("output path is a directory: %s", filename)
	}

	dir := filepath.Dir(filename)
	if dir == "." {
		return nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("cannot create directory %s: %w", dir, err)
		}
	}
	return nil
}

// RemoveIfExists deletes a file, ignoring a missing one.
func RemoveIfExists(filename string) error {
	if err := os.Remove(filename); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// GetFileExtension returns the file extension in lowercase
func GetFileExtension(filename string) string {
	ext := filepath.Ext(filename)
	return strings.ToLower(ext)
}

// IsResumeFile reports whether the extension is one the document loader reads.
func IsResumeFile(filename string) bool {
	return slices.Contains(resumeExtensions, GetFileExtension(filename))
}

// IsPDFFile reports whether the path ends in .pdf.
func IsPDFFile(filename string) bool {
	return GetFileExtension(filename) == ".pdf"
}

// FormatFileSize returns a human-readable file size
func FormatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
