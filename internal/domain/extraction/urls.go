package extraction

import (
	"net"
	"net/url"
	"strings"
	"unicode"

	"github.com/gophishfree/risk-engine/internal/domain"
)

// commonTLDTokens are TLD strings whose presence inside a subdomain or path
// usually means the attacker is faking a domain, e.g. paypal.com.evil.net
var commonTLDTokens = []string{"com", "net", "org", "io", "co", "gov", "edu"}

// lexicalSignals computes the URL lexical group from the dominant link.
// The dominant link is the first http(s) link in document order, matching
// how recipients encounter it. With no links the group stays all zero.
func lexicalSignals(links []Link, senderDomain string) domain.LexicalSignals {
	if len(links) == 0 {
		return domain.LexicalSignals{}
	}

	raw := links[0].Href
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || parsed.Host == "" {
		return domain.LexicalSignals{}
	}

	host := strings.ToLower(parsed.Hostname())
	path := parsed.EscapedPath()
	query := parsed.RawQuery

	sig := domain.LexicalSignals{
		NumDots:            float64(strings.Count(raw, ".")),
		SubdomainLevel:     float64(subdomainLevel(host)),
		PathLevel:          float64(pathLevel(path)),
		URLLength:          float64(len(raw)),
		NumDash:            float64(strings.Count(raw, "-")),
		NumDashInHostname:  float64(strings.Count(host, "-")),
		AtSymbol:           boolFeature(strings.Contains(raw, "@")),
		TildeSymbol:        boolFeature(strings.Contains(raw, "~")),
		NumUnderscore:      float64(strings.Count(raw, "_")),
		NumPercent:         float64(strings.Count(raw, "%")),
		NumQueryComponents: float64(queryComponents(query)),
		NumAmpersand:       float64(strings.Count(raw, "&")),
		NumHash:            float64(strings.Count(raw, "#")),
		NumNumericChars:    float64(countDigits(raw)),
		NoHTTPS:            boolFeature(parsed.Scheme != "https"),
		IPAddress:          boolFeature(net.ParseIP(host) != nil),
		DomainInSubdomains: boolFeature(domainTokenIn(subdomainPart(host))),
		DomainInPaths:      boolFeature(domainTokenIn(strings.ToLower(path))),
		HTTPSInHostname:    boolFeature(strings.Contains(host, "https")),
		HostnameLength:     float64(len(host)),
		PathLength:         float64(len(path)),
		QueryLength:        float64(len(query)),
		DoubleSlashInPath:  boolFeature(strings.Contains(path, "//")),
		NumSensitiveWords:  float64(countSensitiveWords(raw)),
	}

	sig.FrequentDomainNameMismatch = boolFeature(frequentDomainMismatch(links, senderDomain))
	return sig
}

// sensitiveURLWords are tokens that phishing URLs use to mimic account pages
var sensitiveURLWords = []string{
	"secure", "account", "webscr", "login", "signin",
	"banking", "confirm", "verify", "password", "update",
}

func countSensitiveWords(raw string) int {
	lower := strings.ToLower(raw)
	count := 0
	for _, w := range sensitiveURLWords {
		if strings.Contains(lower, w) {
			count++
		}
	}
	return count
}

// subdomainLevel counts host labels beyond the registrable two
func subdomainLevel(host string) int {
	if net.ParseIP(host) != nil {
		return 0
	}
	labels := strings.Count(host, ".") + 1
	if labels <= 2 {
		return 0
	}
	return labels - 2
}

// subdomainPart returns everything left of the registrable domain
func subdomainPart(host string) string {
	labels := strings.Split(host, ".")
	if len(labels) <= 2 {
		return ""
	}
	return strings.Join(labels[:len(labels)-2], ".")
}

// domainTokenIn reports whether a TLD-like token hides inside s, the classic
// sign of a spoofed domain embedded in a subdomain or path
func domainTokenIn(s string) bool {
	if s == "" {
		return false
	}
	for _, part := range strings.FieldsFunc(s, func(r rune) bool {
		return r == '.' || r == '/' || r == '-'
	}) {
		for _, tld := range commonTLDTokens {
			if part == tld {
				return true
			}
		}
	}
	return false
}

func pathLevel(path string) int {
	level := 0
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			level++
		}
	}
	return level
}

func queryComponents(query string) int {
	if query == "" {
		return 0
	}
	return strings.Count(query, "&") + 1
}

func countDigits(s string) int {
	count := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			count++
		}
	}
	return count
}

// frequentDomainMismatch reports whether more than half of the links point
// outside the sender's registrable domain
func frequentDomainMismatch(links []Link, senderDomain string) bool {
	sender := registrableDomain(senderDomain)
	if sender == "" || len(links) == 0 {
		return false
	}
	mismatches := 0
	for _, l := range links {
		host := linkHost(l.Href)
		if host != "" && registrableDomain(host) != sender {
			mismatches++
		}
	}
	return mismatches*2 > len(links)
}

// registrableDomain naively takes the last two labels. Good enough for
// mismatch heuristics; exact public-suffix handling is not needed here.
func registrableDomain(host string) string {
	host = strings.ToLower(strings.TrimSuffix(strings.TrimSpace(host), "."))
	labels := strings.Split(host, ".")
	if len(labels) < 2 {
		return host
	}
	return strings.Join(labels[len(labels)-2:], ".")
}

// LinkHost returns the lowercase hostname of a link target, or "" when the
// target does not parse as a URL
func LinkHost(href string) string {
	return linkHost(href)
}

func linkHost(href string) string {
	parsed, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Hostname())
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
