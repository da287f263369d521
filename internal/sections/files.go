package sections

import (
	"context"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/jonathan/faculty-recruitment/internal/types"
)

// Upload size ceilings
const (
	PhotoMaxBytes          = 200 * 1024
	SignatureMaxBytes      = 50 * 1024
	FinalDocumentsMaxBytes = 3 * 1024 * 1024
	DefaultCertificateMB   = 2
)

var (
	imageTypes = []string{"image/jpeg", "image/png"}
	pdfTypes   = []string{"application/pdf"}
)

// FileRule constrains the files accepted for a section
type FileRule struct {
	MaxBytes     int64
	AllowedTypes []string
}

// FileRuleFor returns the upload constraints of a section
func FileRuleFor(t types.SectionType, req types.SectionRequirement) FileRule {
	switch t {
	case types.SectionPhoto:
		return FileRule{MaxBytes: PhotoMaxBytes, AllowedTypes: imageTypes}
	case types.SectionSignature:
		return FileRule{MaxBytes: SignatureMaxBytes, AllowedTypes: imageTypes}
	case types.SectionFinalDocuments:
		return FileRule{MaxBytes: FinalDocumentsMaxBytes, AllowedTypes: pdfTypes}
	}
	mb := req.MaxFileSizeMB
	if mb <= 0 {
		mb = DefaultCertificateMB
	}
	return FileRule{MaxBytes: int64(mb * 1024 * 1024), AllowedTypes: pdfTypes}
}

// CheckFile validates an upload against the section's rule. The content
// type is detected from the file's magic number; whatever the client
// declared is ignored. It returns the detected MIME type.
func CheckFile(t types.SectionType, req types.SectionRequirement, content []byte) (string, []types.FieldError) {
	if len(content) == 0 {
		return "", []types.FieldError{{Section: t, Field: "file", Message: "file is empty"}}
	}

	rule := FileRuleFor(t, req)
	detected := mimetype.Detect(content)

	var errs []types.FieldError
	if int64(len(content)) > rule.MaxBytes {
		errs = append(errs, types.FieldError{
			Section: t,
			Field:   "file",
			Message: "file must not exceed " + formatSize(rule.MaxBytes),
		})
	}
	if !allowedType(detected, rule.AllowedTypes) {
		errs = append(errs, types.FieldError{
			Section: t,
			Field:   "file",
			Message: fmt.Sprintf("file content must be one of: %s (detected %s)", strings.Join(rule.AllowedTypes, ", "), detected.String()),
		})
	}
	return detected.String(), errs
}

func allowedType(detected *mimetype.MIME, allowed []string) bool {
	for _, a := range allowed {
		if detected.Is(a) {
			return true
		}
	}
	return false
}

func formatSize(n int64) string {
	if n >= 1024*1024 && n%(1024*1024) == 0 {
		return fmt.Sprintf("%dMB", n/(1024*1024))
	}
	if n >= 1024*1024 {
		return fmt.Sprintf("%.1fMB", float64(n)/(1024*1024))
	}
	return fmt.Sprintf("%dKB", n/1024)
}

// Scanner inspects uploaded content before it is stored
type Scanner interface {
	Scan(ctx context.Context, content []byte) error
}

// NoopScanner accepts every file
type NoopScanner struct{}

// Scan implements Scanner
func (NoopScanner) Scan(_ context.Context, _ []byte) error {
	return nil
}
