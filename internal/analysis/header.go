package analysis

import (
	"strings"

	"github.com/mail-cci/phishguard/internal/types"
)

const maxHeaderLength = 500

// requiredHeaders every legitimate message carries.
var requiredHeaders = []string{"from", "date", "subject", "message-id"}

// Header validates header integrity: required headers present, no
// duplicated fields, a plausible Message-ID and no absurdly long values.
func (a *Analyzer) Header(view *types.MetadataView) *types.Signal {
	present := map[string]string{
		"from":       view.From,
		"date":       view.Date,
		"subject":    view.Subject,
		"message-id": view.MessageID,
	}

	var missing []string
	for _, name := range requiredHeaders {
		if present[name] == "" {
			missing = append(missing, name)
		}
	}

	var duplicates []string
	for name, values := range view.Headers {
		if len(values) > 1 {
			duplicates = append(duplicates, name)
		}
	}

	invalidMessageID := view.MessageID == "" ||
		!strings.Contains(view.MessageID, "<") ||
		!strings.Contains(view.MessageID, "@")

	var longHeaders []string
	for name, values := range view.Headers {
		for _, v := range values {
			if len(v) > maxHeaderLength {
				longHeaders = append(longHeaders, name)
				break
			}
		}
	}

	score := float64(len(missing))*0.5 +
		float64(len(duplicates))*1.5 +
		float64(len(longHeaders))*1
	if invalidMessageID {
		score += 1.5
	}

	suspicious := len(missing) > 0 || len(duplicates) > 0 ||
		invalidMessageID || len(longHeaders) > 0

	return &types.Signal{
		Module:     ModuleHeader,
		Suspicious: suspicious,
		Score:      clamp10(score),
		Flags: map[string]bool{
			"missing_headers":        len(missing) > 0,
			"duplicate_headers":      len(duplicates) > 0,
			"invalid_message_id":     invalidMessageID,
			"unusually_long_headers": len(longHeaders) > 0,
		},
		Details: map[string]interface{}{
			"missing":      missing,
			"duplicates":   duplicates,
			"long_headers": longHeaders,
		},
	}
}
