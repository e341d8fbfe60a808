package analysis

import (
	"net"
	"regexp"
	"strings"

	"github.com/mail-cci/phishguard/internal/types"
)

var ipv4Re = regexp.MustCompile(`\b(?:[0-9]{1,3}\.){3}[0-9]{1,3}\b`)

// Relay chains outside this hop range are anomalous: fewer than two hops
// suggests direct injection, more than fifteen an abnormal relay chain.
const (
	minNormalHops = 2
	maxNormalHops = 15
)

// isPrivateIP covers private, loopback and link-local ranges.
func isPrivateIP(ip net.IP) bool {
	return ip.IsPrivate() || ip.IsLoopback() || ip.IsLinkLocalUnicast()
}

// hasPrivateIP scans the routing hops for any private/loopback literal.
func hasPrivateIP(receivedHeaders []string) bool {
	for _, header := range receivedHeaders {
		for _, candidate := range ipv4Re.FindAllString(header, -1) {
			if ip := net.ParseIP(candidate); ip != nil && isPrivateIP(ip) {
				return true
			}
		}
	}
	return false
}

// heloMismatch reports a HELO token that does not contain the sender
// domain. Both sides must be known for the check to fire.
func heloMismatch(helo, fromDomain string) bool {
	if helo == "" || fromDomain == "" {
		return false
	}
	return !strings.Contains(strings.ToLower(helo), strings.ToLower(fromDomain))
}

func relayAnomaly(receivedCount int) bool {
	return receivedCount < minNormalHops || receivedCount > maxNormalHops
}

// Infrastructure inspects the routing hops for private relay addresses,
// HELO/sender disagreement and abnormal relay chain lengths.
func (a *Analyzer) Infrastructure(view *types.MetadataView) *types.Signal {
	privateIP := hasPrivateIP(view.ReceivedHeaders)
	helo := heloMismatch(view.Helo, view.FromDomain)
	relay := relayAnomaly(view.ReceivedCount)

	score := 0.0
	if privateIP {
		score += 2
	}
	if helo {
		score += 1.5
	}
	if relay {
		score += 2
	}

	return &types.Signal{
		Module:     ModuleInfrastructure,
		Suspicious: privateIP || helo || relay,
		Score:      clamp10(score),
		Flags: map[string]bool{
			"private_ip_present": privateIP,
			"helo_mismatch":      helo,
			"relay_anomaly":      relay,
		},
		Details: map[string]interface{}{
			"relay_count":    view.ReceivedCount,
			"originating_ip": view.OriginatingIP,
			"helo":           view.Helo,
		},
	}
}
