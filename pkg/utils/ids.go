package utils

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// NewRequestID returns a random id for request correlation.
func NewRequestID() string {
	return uuid.NewString()
}

// UploadFileName builds a collision-free name that keeps the original extension.
func UploadFileName(original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	return uuid.NewString() + ext
}
