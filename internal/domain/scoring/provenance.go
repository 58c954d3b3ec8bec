package scoring

import "strings"

// ProvenanceSets is the read-only snapshot of domain reputation used by one
// scoring call. The built-in trusted and free-provider sets are compiled
// constants; the user-managed trusted/blocked lists are injected at call time
// so the engine stays free of ambient mutable state.
//
// Precedence: user-blocked > user-trusted > built-in. Free-provider
// membership is checked separately and always wins over trust for dampening
// purposes — anyone can register a mailbox at a public provider, so those
// domains must never benefit from trusted-sender treatment.
type ProvenanceSets struct {
	userTrusted map[string]struct{}
	userBlocked map[string]struct{}
}

// NewProvenanceSets builds a snapshot from the user-managed lists.
// Entries are normalized to lowercase without trailing dots.
func NewProvenanceSets(trusted, blocked []string) ProvenanceSets {
	p := ProvenanceSets{
		userTrusted: make(map[string]struct{}, len(trusted)),
		userBlocked: make(map[string]struct{}, len(blocked)),
	}
	for _, d := range trusted {
		if d = normalizeDomain(d); d != "" {
			p.userTrusted[d] = struct{}{}
		}
	}
	for _, d := range blocked {
		if d = normalizeDomain(d); d != "" {
			p.userBlocked[d] = struct{}{}
		}
	}
	return p
}

// IsBlocked reports whether the domain (or a 2-/3-label parent) is on the
// user's blocked list. A blocked domain is never treated as trusted.
func (p ProvenanceSets) IsBlocked(domain string) bool {
	for _, c := range domainCandidates(domain) {
		if _, ok := p.userBlocked[c]; ok {
			return true
		}
	}
	return false
}

// IsTrusted reports whether the domain matches the user-trusted or built-in
// trusted sets, honoring the blocked-list override. Subdomains of a trusted
// root count as trusted via parent matching at 2- and 3-label granularity.
func (p ProvenanceSets) IsTrusted(domain string) bool {
	if p.IsBlocked(domain) {
		return false
	}
	for _, c := range domainCandidates(domain) {
		if _, ok := p.userTrusted[c]; ok {
			return true
		}
		if _, ok := builtinTrusted[c]; ok {
			return true
		}
	}
	return false
}

// IsFreeProvider reports whether the domain is a recognized free/public
// email provider
func (p ProvenanceSets) IsFreeProvider(domain string) bool {
	for _, c := range domainCandidates(domain) {
		if _, ok := freeProviders[c]; ok {
			return true
		}
	}
	return false
}

func normalizeDomain(d string) string {
	return strings.Trim(strings.ToLower(strings.TrimSpace(d)), ".")
}

// domainCandidates returns the normalized domain plus its 3-label and
// 2-label parents, e.g. "mail.eu.example.com" yields itself,
// "eu.example.com" and "example.com".
func domainCandidates(domain string) []string {
	d := normalizeDomain(domain)
	if d == "" {
		return nil
	}

	labels := strings.Split(d, ".")
	candidates := []string{d}
	if len(labels) > 3 {
		candidates = append(candidates, strings.Join(labels[len(labels)-3:], "."))
	}
	if len(labels) > 2 {
		candidates = append(candidates, strings.Join(labels[len(labels)-2:], "."))
	}
	return candidates
}
