package analysis

import (
	"strings"

	"github.com/mail-cci/phishguard/internal/types"
)

const maxNormalParts = 10

// MIMEStructure inspects the part layout: base64 hiding among many
// distinct transfer encodings, and excessive part counts.
func (a *Analyzer) MIMEStructure(view *types.MetadataView) *types.Signal {
	distinct := make(map[string]struct{}, len(view.PartEncodings))
	hasBase64 := false
	for _, enc := range view.PartEncodings {
		e := strings.ToLower(strings.TrimSpace(enc))
		if e == "" {
			continue
		}
		distinct[e] = struct{}{}
		if e == "base64" {
			hasBase64 = true
		}
	}

	suspiciousEncoding := hasBase64 && len(distinct) > 2
	tooManyParts := view.PartCount > maxNormalParts

	score := 0.0
	if suspiciousEncoding {
		score += 2
	}
	if tooManyParts {
		score += 1.5
	}

	encodings := make([]string, 0, len(distinct))
	for e := range distinct {
		encodings = append(encodings, e)
	}

	return &types.Signal{
		Module:     ModuleMIME,
		Suspicious: suspiciousEncoding || tooManyParts,
		Score:      clamp10(score),
		Flags: map[string]bool{
			"suspicious_encoding": suspiciousEncoding,
			"too_many_parts":      tooManyParts,
		},
		Details: map[string]interface{}{
			"mime_type":       view.ContentType,
			"is_multipart":    view.IsMultipart,
			"mime_part_count": view.PartCount,
			"encodings_used":  encodings,
		},
	}
}
