package utils

import "github.com/google/uuid"

// GenerateID returns a new unique identifier for an upload.
func GenerateID() string {
	return uuid.NewString()
}
