package processor

import (
	"bytes"
	"path/filepath"
	"strings"
)

// Format represents input file format
type Format int

const (
	FormatUnknown Format = iota
	FormatPDF
	FormatImage
)

func (f Format) String() string {
	switch f {
	case FormatPDF:
		return "pdf"
	case FormatImage:
		return "image"
	default:
		return "unknown"
	}
}

// SupportedExtensions lists the file extensions the pipeline accepts
var SupportedExtensions = []string{".jpg", ".jpeg", ".png", ".pdf"}

var (
	magicPDF  = []byte("%PDF")
	magicPNG  = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	magicJPEG = []byte{0xFF, 0xD8, 0xFF}
)

// DetectFormat detects file format from content
func DetectFormat(data []byte) Format {
	switch {
	case bytes.HasPrefix(data, magicPDF):
		return FormatPDF
	case bytes.HasPrefix(data, magicPNG), bytes.HasPrefix(data, magicJPEG):
		return FormatImage
	default:
		return FormatUnknown
	}
}

// ImageMIMEType returns the MIME type of a PNG or JPEG payload, or "" otherwise
func ImageMIMEType(data []byte) string {
	switch {
	case bytes.HasPrefix(data, magicPNG):
		return "image/png"
	case bytes.HasPrefix(data, magicJPEG):
		return "image/jpeg"
	default:
		return ""
	}
}

// IsSupported reports whether path has a supported extension (case-insensitive)
func IsSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, s := range SupportedExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

// formatFromExt maps a supported extension to its format
func formatFromExt(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return FormatPDF
	case ".jpg", ".jpeg", ".png":
		return FormatImage
	default:
		return FormatUnknown
	}
}

// SafeFileName replaces characters that are unsafe in file names
func SafeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "UNKNOWN"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, name)
}
