package models

import (
	"fmt"
	"path/filepath"
	"strings"
)

// CoarseType is the rough classification shown next to an attachment.
type CoarseType string

const (
	TypePDF   CoarseType = "pdf"
	TypeDocx  CoarseType = "docx"
	TypeXlsx  CoarseType = "xlsx"
	TypeImage CoarseType = "image"
	TypeOther CoarseType = "other"
)

// Attachment describes an uploaded file. Size is a human-readable label,
// URL the storage locator. PreviewURL is an ephemeral local handle owned by
// the composing session; it is never persisted or sent to the remote.
type Attachment struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Size       string     `json:"size"`
	Type       CoarseType `json:"type"`
	URL        string     `json:"url"`
	PreviewURL string     `json:"previewUrl,omitempty"`
}

// ClassifyFile maps a filename extension to its coarse type.
func ClassifyFile(name string) CoarseType {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return TypePDF
	case ".doc", ".docx":
		return TypeDocx
	case ".xls", ".xlsx", ".csv":
		return TypeXlsx
	case ".png", ".jpg", ".jpeg", ".gif":
		return TypeImage
	default:
		return TypeOther
	}
}

// SizeLabel renders a byte count the way the directory UI shows it.
func SizeLabel(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
