package document

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// DefaultMIMEType is used when a request does not declare one
const DefaultMIMEType = "application/pdf"

func init() {
	// keep pdfcpu from installing its config dir, certs and fonts on first use
	model.ConfigPath = "disable"
}

func pdfConfiguration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// Info describes a decoded document
type Info struct {
	MIMEType string
	Bytes    int
	Pages    int // 0 when unknown
}

// ResolveMIMEType returns the declared MIME type, or DefaultMIMEType when empty
func ResolveMIMEType(mimeType string) string {
	mimeType = strings.TrimSpace(mimeType)
	if mimeType == "" {
		return DefaultMIMEType
	}
	return mimeType
}

// Decode decodes a base64 document payload. Standard and URL-safe alphabets
// are accepted, with or without padding, and embedded whitespace or a
// "data:<type>;base64," prefix are ignored.
func Decode(encoded string) ([]byte, error) {
	encoded = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\r', '\n':
			return -1
		}
		return r
	}, encoded)
	if i := strings.Index(encoded, ";base64,"); i >= 0 && strings.HasPrefix(encoded, "data:") {
		encoded = encoded[i+len(";base64,"):]
	}
	if encoded == "" {
		return nil, errors.New("empty payload")
	}

	encodings := []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	}

	var firstErr error
	for _, enc := range encodings {
		data, err := enc.DecodeString(encoded)
		if err == nil {
			return data, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, firstErr
}

// Inspect reports basic facts about a document. For PDFs the page count is
// read with pdfcpu; an unreadable PDF returns the partial Info and an error.
func Inspect(data []byte, mimeType string) (info Info, err error) {
	info = Info{MIMEType: mimeType, Bytes: len(data)}

	if !strings.EqualFold(mimeType, "application/pdf") {
		return info, nil
	}

	// pdfcpu may panic on malformed input
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to read pdf: %v", r)
		}
	}()

	pages, err := api.PageCount(bytes.NewReader(data), pdfConfiguration())
	if err != nil {
		return info, fmt.Errorf("failed to get page count: %w", err)
	}
	info.Pages = pages

	return info, nil
}
