// Package dnsscan resolves sender and link domains to produce the DNS signal
// group. Lookups run concurrently, results are cached, and every failure
// degrades to an absent group rather than failing the scan.
package dnsscan

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/gophishfree/risk-engine/internal/domain"
	"github.com/gophishfree/risk-engine/pkg/logger"
)

// Resolver answers single-domain lookups. *DoHClient is the production
// implementation.
type Resolver interface {
	Resolve(ctx context.Context, domain string) (Result, error)
}

// Scanner runs the DNS stage of a scan
type Scanner struct {
	resolver    Resolver
	cache       Cache
	log         *logger.Logger
	maxDomains  int
	maxInFlight int
}

// NewScanner creates a DNS scanner. maxDomains bounds how many link domains
// one email may trigger lookups for.
func NewScanner(resolver Resolver, cache Cache, log *logger.Logger, maxDomains int) *Scanner {
	if maxDomains < 1 {
		maxDomains = 10
	}
	return &Scanner{
		resolver:    resolver,
		cache:       cache,
		log:         log.WithComponent("dnsscan"),
		maxDomains:  maxDomains,
		maxInFlight: 4,
	}
}

// Scan resolves the sender domain and the email's link domains and derives
// the DNS signal group. An error means the stage as a whole could not run;
// callers then score without the group.
func (s *Scanner) Scan(ctx context.Context, senderDomain string, linkDomains []string) (*domain.DNSSignals, error) {
	if senderDomain == "" {
		return nil, fmt.Errorf("no sender domain to resolve")
	}

	domains := dedupe(senderDomain, linkDomains, s.maxDomains)
	results := make(map[string]Result, len(domains))
	failed := make(map[string]bool, len(domains))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxInFlight)

	type outcome struct {
		domain string
		res    Result
		err    error
	}
	outcomes := make(chan outcome, len(domains))

	for _, d := range domains {
		d := d
		g.Go(func() error {
			res, err := s.lookup(gctx, d)
			outcomes <- outcome{domain: d, res: res, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	close(outcomes)

	for out := range outcomes {
		if out.err != nil {
			failed[out.domain] = true
			s.log.Warn().Str("domain", out.domain).Err(out.err).Msg("lookup failed")
			continue
		}
		results[out.domain] = out.res
	}

	senderRes, senderOK := results[senderDomain]
	if !senderOK && failed[senderDomain] && len(results) == 0 {
		return nil, fmt.Errorf("all lookups failed")
	}

	sig := &domain.DNSSignals{
		RandomStringDomain: boolSignal(LooksRandom(senderDomain)),
	}
	if senderOK {
		sig.DomainExists = boolSignal(senderRes.Exists)
		sig.HasMXRecord = boolSignal(senderRes.HasMX)
		sig.MultipleIPs = boolSignal(senderRes.AddressCount > 1)
	}
	for _, d := range domains {
		if d == senderDomain {
			continue
		}
		if res, ok := results[d]; ok && !res.Exists {
			sig.UnresolvedDomains++
		}
	}
	return sig, nil
}

func (s *Scanner) lookup(ctx context.Context, d string) (Result, error) {
	if res, ok := s.cache.Get(ctx, d); ok {
		return res, nil
	}
	res, err := s.resolver.Resolve(ctx, d)
	if err != nil {
		return Result{}, err
	}
	s.cache.Set(ctx, d, res)
	return res, nil
}

// dedupe returns sender plus unique link domains, capped. The sender always
// survives the cap.
func dedupe(sender string, linkDomains []string, max int) []string {
	seen := map[string]bool{sender: true}
	out := []string{sender}

	sorted := append([]string(nil), linkDomains...)
	sort.Strings(sorted)
	for _, d := range sorted {
		if d == "" || seen[d] {
			continue
		}
		if len(out) >= max {
			break
		}
		seen[d] = true
		out = append(out, d)
	}
	return out
}

func boolSignal(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
