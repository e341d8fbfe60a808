package resolver

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	mdns "github.com/miekg/dns"
	"github.com/wttw/spf"
	"go.uber.org/zap"

	"github.com/mail-cci/phishguard/internal/config"
	"github.com/mail-cci/phishguard/internal/metrics"
)

// Outcome is the result of one authentication-record lookup. Network
// failures never propagate; they collapse into Absent or TimedOut, both
// of which score as "record not present".
type Outcome string

const (
	Found    Outcome = "found"
	Absent   Outcome = "absent"
	TimedOut Outcome = "timeout"
)

// Present reports whether the record was positively found.
func (o Outcome) Present() bool { return o == Found }

const (
	kindSPF     = "spf"
	kindDMARC   = "dmarc"
	kindDKIM    = "dkim"
	kindResolve = "resolve"
)

// ipLookuper is the slice of net.Resolver the resolvability check needs.
type ipLookuper interface {
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
}

// Resolver answers SPF/DMARC/DKIM presence and host resolvability
// questions for a domain, with per-query timeouts and a shared cache.
type Resolver struct {
	cfg    config.DNSConfig
	cache  *Cache
	logger *zap.Logger

	netResolver ipLookuper
}

// txtLookup resolves TXT records via miekg/dns so context deadlines are
// respected. Swappable in tests.
var txtLookup = defaultLookupTXT

func defaultLookupTXT(ctx context.Context, domain string) ([]string, error) {
	conf, err := mdns.ClientConfigFromFile("/etc/resolv.conf")
	if err != nil {
		return nil, err
	}
	if len(conf.Servers) == 0 {
		return nil, errors.New("no nameservers configured")
	}
	server := net.JoinHostPort(conf.Servers[0], conf.Port)
	m := new(mdns.Msg)
	m.SetQuestion(mdns.Fqdn(domain), mdns.TypeTXT)
	r, _, err := new(mdns.Client).ExchangeContext(ctx, m, server)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, ans := range r.Answer {
		if t, ok := ans.(*mdns.TXT); ok {
			out = append(out, strings.Join(t.Txt, ""))
		}
	}
	return out, nil
}

// New builds a resolver around the given cache. The cache is owned by the
// caller so it can be shared process-wide or scoped per batch.
func New(cfg config.DNSConfig, cache *Cache, logger *zap.Logger) *Resolver {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	if len(cfg.Selectors) == 0 {
		cfg.Selectors = []string{"default", "selector1", "selector2"}
	}
	if cache == nil {
		cache = NewCache(nil, "", 0)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		cfg:         cfg,
		cache:       cache,
		logger:      logger,
		netResolver: &net.Resolver{},
	}
}

// Cache exposes the resolver's cache for sharing with other callers.
func (r *Resolver) Cache() *Cache { return r.cache }

// CheckSPF reports whether the domain publishes an SPF record
// (TXT containing v=spf1).
func (r *Resolver) CheckSPF(ctx context.Context, domain string) Outcome {
	return r.txtPresence(ctx, kindSPF, domain, domain, "v=spf1")
}

// CheckDMARC reports whether _dmarc.<domain> publishes a DMARC record.
func (r *Resolver) CheckDMARC(ctx context.Context, domain string) Outcome {
	return r.txtPresence(ctx, kindDMARC, domain, "_dmarc."+domain, "v=dmarc1")
}

// CheckDKIM probes the configured selector list under _domainkey and
// short-circuits on the first selector that answers with a DKIM record.
func (r *Resolver) CheckDKIM(ctx context.Context, domain string) Outcome {
	if domain == "" {
		return Absent
	}
	if out, ok := r.cache.Get(ctx, kindDKIM, domain); ok {
		return out
	}

	result := Absent
	for _, selector := range r.cfg.Selectors {
		out := r.queryTXT(ctx, kindDKIM, selector+"._domainkey."+domain, "v=dkim1")
		if out == Found {
			result = Found
			break
		}
		if out == TimedOut {
			result = TimedOut
		}
	}

	r.cache.Set(ctx, kindDKIM, domain, result)
	return result
}

// Resolves reports whether the domain resolves to any address.
func (r *Resolver) Resolves(ctx context.Context, domain string) Outcome {
	if domain == "" {
		return Absent
	}
	if out, ok := r.cache.Get(ctx, kindResolve, domain); ok {
		return out
	}

	cctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	start := time.Now()
	addrs, err := r.netResolver.LookupIPAddr(cctx, domain)
	metrics.DNSLookupDuration.Observe(time.Since(start).Seconds())

	out := Absent
	switch {
	case err == nil && len(addrs) > 0:
		out = Found
	case errors.Is(err, context.DeadlineExceeded):
		out = TimedOut
	}

	metrics.DNSLookupsTotal.WithLabelValues(kindResolve, string(out)).Inc()
	r.cache.Set(ctx, kindResolve, domain, out)
	return out
}

// CheckSPFHost runs a full SPF host evaluation for the sender domain and
// originating IP. This is informational depth on top of the presence
// checks: failures degrade to "neutral" rather than erroring out.
func (r *Resolver) CheckSPFHost(ctx context.Context, ip net.IP, domain, sender string) string {
	if !r.cfg.DeepSPF || ip == nil || domain == "" {
		return ""
	}

	cctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	checker := spf.NewChecker()
	result := checker.CheckHost(cctx, ip, mdns.Fqdn(domain), sender, "")
	if result.Error != nil {
		r.logger.Debug("deep SPF evaluation failed",
			zap.String("domain", domain),
			zap.Error(result.Error))
		return "neutral"
	}
	return result.Type.String()
}

func (r *Resolver) txtPresence(ctx context.Context, kind, cacheDomain, queryDomain, marker string) Outcome {
	if cacheDomain == "" {
		return Absent
	}
	if out, ok := r.cache.Get(ctx, kind, cacheDomain); ok {
		return out
	}
	out := r.queryTXT(ctx, kind, queryDomain, marker)
	r.cache.Set(ctx, kind, cacheDomain, out)
	return out
}

// queryTXT performs one TXT query and scans the answers for the marker
// token (case-insensitive). NXDOMAIN, empty answers and resolver errors
// all read as Absent; only a deadline reads as TimedOut.
func (r *Resolver) queryTXT(ctx context.Context, kind, domain, marker string) Outcome {
	cctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	start := time.Now()
	records, err := txtLookup(cctx, domain)
	metrics.DNSLookupDuration.Observe(time.Since(start).Seconds())

	out := Absent
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || cctx.Err() != nil {
			out = TimedOut
		}
		r.logger.Debug("TXT lookup failed",
			zap.String("kind", kind),
			zap.String("domain", domain),
			zap.Error(err))
	} else {
		for _, record := range records {
			if strings.Contains(strings.ToLower(record), marker) {
				out = Found
				break
			}
		}
	}

	metrics.DNSLookupsTotal.WithLabelValues(kind, string(out)).Inc()
	return out
}
