package analysis

import (
	"path/filepath"
	"strings"

	"github.com/mail-cci/phishguard/internal/types"
)

const maxAttachmentBytes = 20 * 1024 * 1024

// Tiered per-attachment points. A single CRITICAL trigger is enough for a
// MALICIOUS verdict; HIGH triggers alone land in SUSPICIOUS.
const (
	scoreDangerousExtension = 45
	scoreMacroExtension     = 40
	scoreDoubleExtension    = 20
	scoreMIMEMismatch       = 15
	scoreLargeFile          = 8
	maxRiskScore            = 100

	maliciousThreshold  = 40
	suspiciousThreshold = 15
)

// mimeMap is the expected MIME type per extension. Extensions not listed
// here are never flagged as mismatched.
var mimeMap = map[string]string{
	".pdf":  "application/pdf",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".exe":  "application/x-msdownload",
	".bat":  "application/x-msdownload",
	".cmd":  "application/x-msdownload",
	".scr":  "application/x-msdownload",
	".js":   "application/javascript",
	".vbs":  "text/vbscript",
	".ps1":  "application/x-powershell",
	".jar":  "application/java-archive",
	".docm": "application/vnd.ms-word.document.macroEnabled.12",
	".xlsm": "application/vnd.ms-excel.sheet.macroEnabled.12",
	".pptm": "application/vnd.ms-powerpoint.presentation.macroEnabled.12",
}

func extensionOf(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

func (a *Analyzer) isDangerousExtension(ext string) bool {
	for _, d := range a.rules.DangerousExtensions {
		if ext == d {
			return true
		}
	}
	return false
}

func (a *Analyzer) isMacroExtension(ext string) bool {
	for _, m := range a.rules.MacroExtensions {
		if ext == m {
			return true
		}
	}
	return false
}

func (a *Analyzer) isArchiveExtension(ext string) bool {
	for _, arc := range a.rules.ArchiveExtensions {
		if ext == arc {
			return true
		}
	}
	return false
}

// hasDoubleExtension detects the "invoice.pdf.exe" pattern: at least
// three dot-separated segments with a dangerous final extension.
func (a *Analyzer) hasDoubleExtension(filename string) bool {
	parts := strings.Split(strings.ToLower(filename), ".")
	if len(parts) < 3 {
		return false
	}
	return a.isDangerousExtension("." + parts[len(parts)-1])
}

// hasMIMEMismatch reports a declared MIME type that contradicts the
// extension's expected type. Unmapped extensions cannot mismatch.
func hasMIMEMismatch(ext, declared string) bool {
	if ext == "" || declared == "" {
		return false
	}
	expected, ok := mimeMap[ext]
	if !ok {
		return false
	}
	return !strings.EqualFold(expected, declared)
}

// AnalyzeAttachment scores one attachment with the tiered rules and maps
// the score to a verdict.
func (a *Analyzer) AnalyzeAttachment(att types.AttachmentInfo) types.AttachmentAnalysis {
	ext := extensionOf(att.Filename)

	analysis := types.AttachmentAnalysis{
		Filename:           att.Filename,
		MIMEType:           att.MIMEType,
		SizeBytes:          att.SizeBytes,
		DangerousExtension: a.isDangerousExtension(ext),
		DoubleExtension:    a.hasDoubleExtension(att.Filename),
		MacroExtension:     a.isMacroExtension(ext),
		MIMEMismatch:       hasMIMEMismatch(ext, att.MIMEType),
		LargeFile:          att.SizeBytes > maxAttachmentBytes,
	}

	score := 0
	if analysis.DangerousExtension {
		score += scoreDangerousExtension
	}
	if analysis.MacroExtension {
		score += scoreMacroExtension
	}
	if analysis.DoubleExtension {
		score += scoreDoubleExtension
	}
	if analysis.MIMEMismatch {
		score += scoreMIMEMismatch
	}
	if analysis.LargeFile {
		score += scoreLargeFile
	}
	if score > maxRiskScore {
		score = maxRiskScore
	}
	analysis.RiskScore = score

	switch {
	case score >= maliciousThreshold:
		analysis.Verdict = types.VerdictMalicious
	case score >= suspiciousThreshold:
		analysis.Verdict = types.VerdictSuspicious
	default:
		analysis.Verdict = types.VerdictSafe
	}

	return analysis
}

// Attachment analyzes every attachment, ORs the per-attachment verdicts
// into the module signal and exposes the highest-risk attachment for
// reporting. The continuous sub-score accumulates softer per-attachment
// penalties (double extension 2, executable 3, macro 2.5, archive 1.5).
func (a *Analyzer) Attachment(view *types.MetadataView) *types.Signal {
	var (
		dangerous bool
		double    bool
		macro     bool
		mismatch  bool
		large     bool
	)
	score := 0.0

	analyses := make([]types.AttachmentAnalysis, 0, len(view.Attachments))
	var highest *types.AttachmentAnalysis

	for _, att := range view.Attachments {
		analysis := a.AnalyzeAttachment(att)
		analyses = append(analyses, analysis)

		dangerous = dangerous || analysis.DangerousExtension
		double = double || analysis.DoubleExtension
		macro = macro || analysis.MacroExtension
		mismatch = mismatch || analysis.MIMEMismatch
		large = large || analysis.LargeFile

		ext := extensionOf(att.Filename)
		if analysis.DoubleExtension {
			score += 2
		}
		if analysis.DangerousExtension {
			score += 3
		}
		if analysis.MacroExtension {
			score += 2.5
		}
		if a.isArchiveExtension(ext) {
			score += 1.5
		}

		if highest == nil || analysis.RiskScore > highest.RiskScore {
			last := analyses[len(analyses)-1]
			highest = &last
		}
	}

	details := map[string]interface{}{
		"attachment_count": len(view.Attachments),
	}
	if len(analyses) > 0 {
		details["attachments"] = analyses
	}
	if highest != nil {
		details["highest_risk"] = *highest
	}

	suspicious := false
	for _, analysis := range analyses {
		if analysis.Verdict != types.VerdictSafe {
			suspicious = true
			break
		}
	}

	return &types.Signal{
		Module:     ModuleAttachment,
		Suspicious: suspicious,
		Score:      clamp10(score),
		Flags: map[string]bool{
			"dangerous_extension": dangerous,
			"double_extension":    double,
			"macro_file":          macro,
			"mime_mismatch":       mismatch,
			"large_file":          large,
		},
		Details: details,
	}
}
