package types

// AuthState is the parsed outcome of one mechanism in an
// Authentication-Results header. An empty value means the mechanism was
// not mentioned at all, which is distinct from an explicit "none".
type AuthState string

const (
	AuthPass     AuthState = "pass"
	AuthFail     AuthState = "fail"
	AuthSoftfail AuthState = "softfail"
	AuthNeutral  AuthState = "neutral"
	AuthNone     AuthState = "none"
	AuthAbsent   AuthState = ""
)

// AuthResults holds the per-mechanism states parsed from an
// Authentication-Results header plus the DKIM signing domain (header.d=).
type AuthResults struct {
	SPF        AuthState `json:"spf"`
	DKIM       AuthState `json:"dkim"`
	DMARC      AuthState `json:"dmarc"`
	ARC        AuthState `json:"arc"`
	DKIMDomain string    `json:"dkim_domain,omitempty"`
}

// Present reports whether any mechanism appeared in the header. A message
// with no Authentication-Results header at all yields Present() == false.
func (a AuthResults) Present() bool {
	return a.SPF != AuthAbsent || a.DKIM != AuthAbsent ||
		a.DMARC != AuthAbsent || a.ARC != AuthAbsent
}

// URLInfo describes one URL extracted from the decoded body.
type URLInfo struct {
	FullURL string `json:"full_url"`
	Domain  string `json:"domain"`
	Path    string `json:"path"`
	Scheme  string `json:"scheme"`
}

// AttachmentInfo describes one attachment as reported by the parser.
// Payload bytes never reach the core; only the digest does.
type AttachmentInfo struct {
	Filename  string `json:"filename"`
	MIMEType  string `json:"mime_type"`
	SizeBytes int64  `json:"size_bytes"`
	SHA256    string `json:"sha256,omitempty"`
}

// MetadataView is the read-only snapshot of a parsed message that every
// detector consumes. It is built once per assessment by the external
// parser collaborator (or decoded from the API request) and never mutated.
// Empty strings mean the header was absent.
type MetadataView struct {
	From        string `json:"from"`
	To          string `json:"to"`
	Cc          string `json:"cc"`
	Bcc         string `json:"bcc"`
	Subject     string `json:"subject"`
	Date        string `json:"date"`
	ReplyTo     string `json:"reply_to"`
	ReturnPath  string `json:"return_path"`
	MessageID   string `json:"message_id"`
	MIMEVersion string `json:"mime_version"`
	XMailer     string `json:"x_mailer"`
	UserAgent   string `json:"user_agent"`

	FromDomain       string `json:"from_domain"`
	ReplyToDomain    string `json:"reply_to_domain"`
	ReturnPathDomain string `json:"return_path_domain"`
	MessageIDDomain  string `json:"message_id_domain"`

	// Mismatch flags are true only when both sides are known and differ.
	ReplyToMismatch    bool `json:"reply_to_mismatch"`
	ReturnPathMismatch bool `json:"return_path_mismatch"`
	MessageIDMismatch  bool `json:"message_id_mismatch"`

	ReceivedHeaders []string `json:"received_headers"`
	ReceivedCount   int      `json:"received_count"`
	Helo            string   `json:"helo"`

	// OriginatingIP is the first public IP literal found in the routing
	// hops, or empty when every literal was private/loopback or absent.
	OriginatingIP string `json:"originating_ip"`
	// IPs lists every IP literal found in routing hops and
	// X-Originating-IP, deduplicated in header order, private included.
	IPs []string `json:"ips"`

	Authentication AuthResults `json:"authentication"`

	URLs        []URLInfo        `json:"urls"`
	Attachments []AttachmentInfo `json:"attachments"`

	Body       string `json:"body"`
	BodyLength int    `json:"body_length"`

	ContentType   string   `json:"content_type"`
	IsMultipart   bool     `json:"is_multipart"`
	PartEncodings []string `json:"part_encodings"`
	PartCount     int      `json:"part_count"`

	// Headers carries the raw multi-value header map for duplicate and
	// length checks. Keys are lower-cased header names.
	Headers map[string][]string `json:"headers,omitempty"`
}

// AttachmentVerdict classifies a single attachment by its tiered score.
type AttachmentVerdict string

const (
	VerdictSafe       AttachmentVerdict = "SAFE"
	VerdictSuspicious AttachmentVerdict = "SUSPICIOUS"
	VerdictMalicious  AttachmentVerdict = "MALICIOUS"
)

// AttachmentAnalysis is the per-attachment outcome of the attachment
// detector: individual check flags, tiered 0-100 score and verdict.
type AttachmentAnalysis struct {
	Filename           string            `json:"filename"`
	MIMEType           string            `json:"mime_type"`
	SizeBytes          int64             `json:"size_bytes"`
	DangerousExtension bool              `json:"dangerous_extension"`
	DoubleExtension    bool              `json:"double_extension"`
	MacroExtension     bool              `json:"macro_extension"`
	MIMEMismatch       bool              `json:"mime_mismatch"`
	LargeFile          bool              `json:"large_file"`
	RiskScore          int               `json:"risk_score"`
	Verdict            AttachmentVerdict `json:"verdict"`
}

// Signal is one detector's output: named boolean flags, the module-level
// suspicious bit (OR of the module's flags) and a bounded continuous
// sub-score in [0,10] used by the weighted-component aggregator.
type Signal struct {
	Module     string                 `json:"module"`
	Suspicious bool                   `json:"suspicious"`
	Score      float64                `json:"score"`
	Flags      map[string]bool        `json:"flags"`
	Details    map[string]interface{} `json:"details,omitempty"`
}

// Flag reads a named flag; absent flags read as false.
func (s *Signal) Flag(name string) bool {
	if s == nil || s.Flags == nil {
		return false
	}
	return s.Flags[name]
}

// Details carries selected raw facts for audit output. Part of the public
// JSON contract.
type Details struct {
	HeaderMismatch bool   `json:"header_mismatch"`
	DomainMismatch bool   `json:"domain_mismatch"`
	OriginatingIP  string `json:"originating_ip"`
	TotalIPsFound  int    `json:"total_ips_found"`
	URLsFound      int    `json:"urls_found"`
}

// Assessment is the final report returned to callers. OverallScore is
// 0-100 under the trigger scheme and 0-10 under the weighted scheme;
// RiskLevel is the matching verdict band. The shape is a stable contract
// consumed by the API and CLI shells.
type Assessment struct {
	CorrelationID    string             `json:"correlation_id,omitempty"`
	Scheme           string             `json:"scheme"`
	OverallScore     float64            `json:"overall_score"`
	RiskLevel        string             `json:"risk_level"`
	SPF              bool               `json:"spf"`
	DMARC            bool               `json:"dmarc"`
	DKIM             bool               `json:"dkim"`
	OriginatingIP    string             `json:"originating_ip"`
	ComponentScores  map[string]float64 `json:"component_scores"`
	TriggeredReasons []string           `json:"triggered_reasons"`
	FailedModules    []string           `json:"failed_modules,omitempty"`
	Details          Details            `json:"details"`
}
