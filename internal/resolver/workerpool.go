package resolver

import (
	"context"
	"sync"
)

// DomainAuth is the authentication posture of one domain: presence of
// SPF/DMARC/DKIM records and whether the host resolves at all.
// Unresolved marks a domain whose worker failed outright; callers treat
// it as suspicious rather than aborting the batch.
type DomainAuth struct {
	Domain     string  `json:"domain"`
	SPF        Outcome `json:"spf"`
	DMARC      Outcome `json:"dmarc"`
	DKIM       Outcome `json:"dkim"`
	Resolvable Outcome `json:"resolvable"`
	Unresolved bool    `json:"unresolved"`
}

type domainTask struct {
	domain string
	resp   chan DomainAuth
}

// Pool dispatches per-domain authentication checks across a fixed number
// of workers so a URL-heavy message cannot fan out into unbounded socket
// usage.
type Pool struct {
	resolver *Resolver
	workers  int

	mu      sync.Mutex
	queue   chan *domainTask
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

// NewPool creates a pool with the given concurrency, defaulting to 5.
func NewPool(r *Resolver, workers int) *Pool {
	if workers <= 0 {
		workers = 5
	}
	return &Pool{
		resolver: r,
		workers:  workers,
		queue:    make(chan *domainTask, workers*2),
	}
}

// Start launches the worker goroutines. Safe to call twice.
func (p *Pool) Start() {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.ctx, p.cancel = context.WithCancel(context.Background())
	p.running = true
	p.mu.Unlock()

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// Stop drains the workers and waits for them to finish.
func (p *Pool) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.cancel()
	close(p.queue)
	p.mu.Unlock()
	p.wg.Wait()
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case task, ok := <-p.queue:
			if !ok {
				return
			}
			task.resp <- p.analyze(task.domain)
		case <-p.ctx.Done():
			return
		}
	}
}

// analyze runs the four checks for one domain. A panic inside the checks
// degrades to a conservative unresolved report instead of killing the
// worker.
func (p *Pool) analyze(domain string) (auth DomainAuth) {
	defer func() {
		if r := recover(); r != nil {
			auth = DomainAuth{Domain: domain, SPF: Absent, DMARC: Absent, DKIM: Absent, Resolvable: Absent, Unresolved: true}
		}
	}()

	ctx := p.ctx
	return DomainAuth{
		Domain:     domain,
		SPF:        p.resolver.CheckSPF(ctx, domain),
		DMARC:      p.resolver.CheckDMARC(ctx, domain),
		DKIM:       p.resolver.CheckDKIM(ctx, domain),
		Resolvable: p.resolver.Resolves(ctx, domain),
	}
}

// AnalyzeDomains fans the distinct domains out across the pool and
// collects one report per domain. Domains still pending when ctx expires
// come back unresolved; duplicate input domains collapse to one lookup.
func (p *Pool) AnalyzeDomains(ctx context.Context, domains []string) map[string]DomainAuth {
	results := make(map[string]DomainAuth, len(domains))

	distinct := make([]string, 0, len(domains))
	seen := make(map[string]struct{}, len(domains))
	for _, d := range domains {
		if d == "" {
			continue
		}
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		distinct = append(distinct, d)
	}

	pending := make(map[string]chan DomainAuth, len(distinct))
	for _, d := range distinct {
		task := &domainTask{domain: d, resp: make(chan DomainAuth, 1)}
		pending[d] = task.resp

		select {
		case p.queue <- task:
		case <-ctx.Done():
			results[d] = DomainAuth{Domain: d, SPF: TimedOut, DMARC: TimedOut, DKIM: TimedOut, Resolvable: TimedOut, Unresolved: true}
			delete(pending, d)
		}
	}

	for d, resp := range pending {
		select {
		case auth := <-resp:
			results[d] = auth
		case <-ctx.Done():
			results[d] = DomainAuth{Domain: d, SPF: TimedOut, DMARC: TimedOut, DKIM: TimedOut, Resolvable: TimedOut, Unresolved: true}
		}
	}

	return results
}
