package helpers

import (
	"strings"

	uuid "github.com/satori/go.uuid"
)

// ExtractDomain returns the lower-cased domain part of an address header
// value. Display names and angle brackets are tolerated; an address
// without exactly one "@" yields "".
func ExtractDomain(address string) string {
	if address == "" {
		return ""
	}
	addr := address
	if i := strings.LastIndex(addr, "<"); i != -1 {
		addr = addr[i+1:]
	}
	addr = strings.TrimRight(strings.TrimSpace(addr), ">")
	parts := strings.Split(addr, "@")
	if len(parts) != 2 || parts[1] == "" {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(parts[1]))
}

// ExtractMessageIDDomain returns the lower-cased domain of a Message-ID
// value such as "<abc123@mail.example.com>".
func ExtractMessageIDDomain(messageID string) string {
	if messageID == "" || !strings.Contains(messageID, "@") {
		return ""
	}
	domain := messageID[strings.LastIndex(messageID, "@")+1:]
	domain = strings.TrimRight(strings.TrimSpace(domain), ">")
	if domain == "" {
		return ""
	}
	return strings.ToLower(domain)
}

// EffectiveDomain reduces a hostname to its registrable two-label suffix,
// used for lookalike comparisons. Hosts with fewer than two labels are
// returned unchanged.
func EffectiveDomain(host string) string {
	parts := strings.Split(host, ".")
	if len(parts) >= 2 {
		return strings.Join(parts[len(parts)-2:], ".")
	}
	return host
}

// GenerateCorrelationID returns a unique ID attached to every assessment.
func GenerateCorrelationID() string {
	return uuid.NewV4().String()
}

// ValidSender reports whether an address has non-empty local and domain
// parts.
func ValidSender(sender string) bool {
	parts := strings.Split(sender, "@")
	if len(parts) != 2 {
		return false
	}
	return parts[0] != "" && parts[1] != ""
}
