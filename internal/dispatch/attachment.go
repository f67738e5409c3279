package dispatch

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var dataURLPattern = regexp.MustCompile(`^data:(image/\w+);base64,(.+)$`)

// Attachment is the optional image of an operator reply. At most one of the
// fields is used; UploadPath wins over InlineData.
type Attachment struct {
	// UploadPath is a file already stored in the upload directory.
	UploadPath string
	// InlineData is a data:image/<type>;base64,<payload> URL pasted in the dashboard.
	InlineData string
}

// IsZero reports whether no attachment was supplied.
func (a Attachment) IsZero() bool {
	return a.UploadPath == "" && a.InlineData == ""
}

// InlineImage is a decoded data URL.
type InlineImage struct {
	MimeType string
	Ext      string
	Data     []byte
}

// DecodeInlineImage parses a pasted data URL. ok is false when s is not a
// well-formed base64 image payload.
func DecodeInlineImage(s string) (img InlineImage, ok bool) {
	m := dataURLPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return InlineImage{}, false
	}
	data, err := base64.StdEncoding.DecodeString(m[2])
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(m[2])
	}
	if err != nil || len(data) == 0 {
		return InlineImage{}, false
	}
	return InlineImage{
		MimeType: m[1],
		Ext:      strings.TrimPrefix(m[1], "image/"),
		Data:     data,
	}, true
}

// writeInlineImage stores img in dir under a fresh unique name and returns its path.
func writeInlineImage(dir string, img InlineImage) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	path := filepath.Join(dir, uuid.NewString()+"."+img.Ext)
	if err := os.WriteFile(path, img.Data, 0o644); err != nil {
		return "", fmt.Errorf("write inline image: %w", err)
	}
	return path, nil
}

// UploadName returns a unique, path-safe file name for an uploaded file.
func UploadName(original string) string {
	base := filepath.Base(filepath.Clean("/" + original))
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		}
		return '_'
	}, base)
	if base == "" || base == "." || base == "_" {
		base = "file"
	}
	return uuid.NewString() + "_" + base
}
