// Package extraction derives the scoring engine's signal groups from parsed
// email content. Everything here is pure string/URL analysis: no I/O, no
// lookups. The optional DNS and deep-scan groups are produced by their own
// collaborators and merged in by the application layer.
package extraction

import (
	"strings"

	"github.com/gophishfree/risk-engine/internal/domain"
)

// Link is one hyperlink found in the email body
type Link struct {
	Href string
	Text string
}

// Email is the parsed content handed to the extractor by the MIME adapter
type Email struct {
	Subject         string
	BodyText        string
	BodyHTML        string
	FromAddress     string
	FromName        string
	ReplyToAddress  string
	ReturnPath      string
	AuthResults     string // raw Authentication-Results header, may be empty
	Links           []Link
	AttachmentNames []string
}

// Extractor turns parsed email content into the base signal groups
type Extractor struct{}

// NewExtractor creates a signal extractor
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract produces the lexical, rule, BEC, attachment and newsletter signal
// groups for one email. DNS and page groups stay nil; their collaborators
// fill them in separately when enabled.
func (e *Extractor) Extract(email Email) domain.Signals {
	senderDomain := domainOfAddress(email.FromAddress)
	replyToDomain := domainOfAddress(email.ReplyToAddress)

	text := strings.ToLower(email.Subject + " " + email.BodyText)
	links := httpLinks(email.Links)

	lexical := lexicalSignals(links, senderDomain)
	rules := ruleSignals(email, links, senderDomain, text)
	bec := becSignals(email, links, senderDomain, replyToDomain, text)
	attachment := attachmentSignals(email.AttachmentNames)
	newsletter := newsletterSignals(email, links, text)

	return domain.Signals{
		Lexical:       &lexical,
		Rules:         &rules,
		BEC:           &bec,
		Attachment:    &attachment,
		Newsletter:    newsletter,
		SenderDomain:  senderDomain,
		ReplyToDomain: replyToDomain,
	}
}

// domainOfAddress extracts the lowercase domain from an email address,
// tolerating display-name forms like "Name <user@host>"
func domainOfAddress(addr string) string {
	addr = strings.TrimSpace(addr)
	if start := strings.LastIndex(addr, "<"); start != -1 {
		if end := strings.Index(addr[start:], ">"); end != -1 {
			addr = addr[start+1 : start+end]
		}
	}
	parts := strings.Split(addr, "@")
	if len(parts) != 2 {
		return ""
	}
	return strings.ToLower(strings.TrimSuffix(parts[1], "."))
}

// httpLinks filters out mailto:, tel: and fragment-only links
func httpLinks(links []Link) []Link {
	out := make([]Link, 0, len(links))
	for _, l := range links {
		href := strings.ToLower(strings.TrimSpace(l.Href))
		if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
			out = append(out, l)
		}
	}
	return out
}
