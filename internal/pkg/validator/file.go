package validator

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/docbrief/nlp-engine/internal/config"
	"github.com/docbrief/nlp-engine/internal/entity"
)

var allowedExtensions = map[string]struct{}{
	".txt":  {},
	".md":   {},
	".docx": {},
	".pdf":  {},
	".png":  {},
	".jpg":  {},
	".jpeg": {},
}

// FileValidator checks uploaded files against configured limits.
type FileValidator struct {
	cfg config.FileUploadConfig
}

func NewFileValidator(cfg config.FileUploadConfig) *FileValidator {
	return &FileValidator{cfg: cfg}
}

// ValidateUpload checks extension and size of an uploaded document.
func (v *FileValidator) ValidateUpload(filename string, size int64) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := allowedExtensions[ext]; !ok {
		return fmt.Errorf("file %q: %w", filename, entity.ErrInvalidExtension)
	}
	if size <= 0 {
		return fmt.Errorf("file %q is empty: %w", filename, entity.ErrInvalidFile)
	}
	if size > v.cfg.MaxFileSize {
		return fmt.Errorf("file %q exceeds %d bytes: %w", filename, v.cfg.MaxFileSize, entity.ErrFileTooLarge)
	}
	return nil
}

// MaxUploadSize returns the multipart memory limit for upload parsing.
func (v *FileValidator) MaxUploadSize() int64 {
	return v.cfg.MaxUploadSize
}
