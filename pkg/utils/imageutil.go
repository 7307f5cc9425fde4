package utils

import (
	"fmt"
	"regexp"

	"github.com/google/uuid"
)

var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// GenerateID returns the first 8 hex characters of a random UUID.
// Collisions are possible and not checked.
func GenerateID() string {
	return uuid.New().String()[:8]
}

// ValidID reports whether id is safe to use as a file name.
func ValidID(id string) bool {
	return len(id) <= 64 && idPattern.MatchString(id)
}

func OutputFilename(id, ext string) string {
	return fmt.Sprintf("%s.%s", id, ext)
}

func DownloadPath(id string) string {
	return "/download/" + id
}
