package rag

import (
	"path/filepath"
	"strings"
	"time"
)

// Document status values
const (
	DocumentStatusProcessing = "processing"
	DocumentStatusReady      = "ready"
)

// Document is one uploaded file, unique per (TenantID, ContentHash)
type Document struct {
	ID          string
	TenantID    string
	Filename    string
	ContentHash string // sha256 hex of the raw upload
	Status      string
	CreatedAt   time.Time
}

// IsReady reports whether every chunk of the document has been indexed
func (d *Document) IsReady() bool {
	return d.Status == DocumentStatusReady
}

// SupportedExtensions are the file types accepted for ingestion
var SupportedExtensions = []string{".pdf", ".txt", ".md"}

// IsSupportedFile reports whether filename has an accepted extension
func IsSupportedFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, e := range SupportedExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
