package extraction

import (
	"regexp"
	"strings"

	"github.com/gophishfree/risk-engine/internal/domain"
)

// Keyword lists for the language scores. Each list entry counts at most once
// per email, so a score of N means N distinct indicators were present.
var (
	urgencyKeywords = []string{
		"urgent", "immediately", "act now", "expires", "expiring",
		"within 24 hours", "final notice", "asap", "right away",
		"account suspended", "action required", "last chance",
		"do not delay", "time sensitive",
	}

	credentialKeywords = []string{
		"verify your account", "confirm your identity", "password",
		"credentials", "security alert", "unusual activity",
		"update your payment", "re-enter your", "validate your account",
		"sign in to continue", "confirm your details",
	}

	financialKeywords = []string{
		"wire transfer", "bank transfer", "payment", "invoice",
		"gift card", "gift cards", "bitcoin", "cryptocurrency",
		"transfer funds", "outstanding balance", "routing number",
		"iban", "account number", "purchase order", "refund",
	}

	authorityKeywords = []string{
		"ceo", "chief executive", "cfo", "chief financial",
		"president", "managing director", "it department",
		"hr department", "helpdesk", "help desk", "administrator",
		"payroll department", "legal department",
	}

	// a callback verb followed within a short window by a phone number
	phoneCallbackPattern = regexp.MustCompile(
		`(?i)\b(call|dial|phone|ring|contact)\b.{0,50}?\+?\(?\d[\d\s().-]{7,}\d`)
)

const maxKeywordScore = 10

// keywordScore counts distinct list entries present in text, capped so one
// very long email cannot dominate the normalized feature
func keywordScore(text string, keywords []string) float64 {
	count := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			count++
			if count == maxKeywordScore {
				break
			}
		}
	}
	return float64(count)
}

// suspiciousTLDs and shortenerHosts feed the promoted rule signals
var suspiciousTLDs = []string{
	".tk", ".ml", ".ga", ".cf", ".gq", ".xyz", ".top", ".work",
	".click", ".link", ".zip", ".mov", ".rest", ".stream",
}

var shortenerHosts = map[string]struct{}{
	"bit.ly": {}, "tinyurl.com": {}, "goo.gl": {}, "t.co": {},
	"ow.ly": {}, "is.gd": {}, "buff.ly": {}, "cutt.ly": {},
	"rb.gy": {}, "rebrand.ly": {}, "shorturl.at": {}, "tiny.cc": {},
}

// ruleSignals computes group 2: the custom rules promoted to model inputs
func ruleSignals(email Email, links []Link, senderDomain, text string) domain.RuleSignals {
	sig := domain.RuleSignals{
		UrgencyScore:           keywordScore(text, urgencyKeywords),
		CredentialRequestScore: keywordScore(text, credentialKeywords),
		LinkCount:              float64(len(links)),
		HeaderMismatch:         boolFeature(headerMismatch(email, senderDomain)),
	}

	mismatches := 0
	for _, l := range links {
		host := linkHost(l.Href)
		if host == "" {
			continue
		}
		if strings.HasPrefix(host, "xn--") || strings.Contains(host, ".xn--") {
			sig.Punycode = 1
		}
		if _, ok := shortenerHosts[host]; ok {
			sig.ShortenerDomain = 1
		}
		for _, tld := range suspiciousTLDs {
			if strings.HasSuffix(host, tld) {
				sig.SuspiciousTLD = 1
				break
			}
		}
		if linkTextMismatch(l, host) {
			mismatches++
		}
	}

	sig.LinkMismatchCount = float64(mismatches)
	if len(links) > 0 {
		sig.LinkMismatchRatio = float64(mismatches) / float64(len(links))
	}
	return sig
}

// linkTextMismatch reports whether the anchor text displays a domain that
// differs from where the href actually points
func linkTextMismatch(l Link, hrefHost string) bool {
	text := strings.ToLower(strings.TrimSpace(l.Text))
	if text == "" {
		return false
	}
	shown := text
	if strings.HasPrefix(shown, "http://") || strings.HasPrefix(shown, "https://") {
		shown = linkHost(shown)
	} else if !looksLikeDomain(shown) {
		return false
	}
	shown = strings.TrimPrefix(shown, "www.")
	return registrableDomain(shown) != registrableDomain(hrefHost)
}

// looksLikeDomain is a cheap check for anchor text of the form example.com
func looksLikeDomain(s string) bool {
	if strings.ContainsAny(s, " \t\n") || !strings.Contains(s, ".") {
		return false
	}
	for _, r := range s {
		if !(r == '.' || r == '-' || r == '/' ||
			(r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')) {
			return false
		}
	}
	return true
}

// headerMismatch flags a Return-Path domain that disagrees with the From
// domain, or an explicit authentication failure recorded by the receiving MTA
func headerMismatch(email Email, senderDomain string) bool {
	returnDomain := domainOfAddress(email.ReturnPath)
	if returnDomain != "" && senderDomain != "" &&
		registrableDomain(returnDomain) != registrableDomain(senderDomain) {
		return true
	}
	auth := strings.ToLower(email.AuthResults)
	return strings.Contains(auth, "spf=fail") ||
		strings.Contains(auth, "dkim=fail") ||
		strings.Contains(auth, "dmarc=fail")
}

// becSignals computes group 5: social-engineering language that works with
// or without links in the body
func becSignals(email Email, links []Link, senderDomain, replyToDomain, text string) domain.BECSignals {
	sig := domain.BECSignals{
		FinancialRequestScore:       keywordScore(text, financialKeywords),
		AuthorityImpersonationScore: keywordScore(text, authorityKeywords),
		IsLinkless:                  boolFeature(len(links) == 0),
	}
	if phoneCallbackPattern.MatchString(text) {
		sig.PhoneCallbackPattern = 1
	}
	if replyToDomain != "" && senderDomain != "" && replyToDomain != senderDomain {
		sig.ReplyToMismatch = 1
	}
	return sig
}

var newsletterFooterPhrases = []string{
	"you are receiving this email because",
	"you're receiving this email because",
	"manage your preferences",
	"email preferences",
	"update your subscription",
	"no longer wish to receive",
}

// newsletterSignals are legitimacy indicators consumed only by the
// post-model dampening rules
func newsletterSignals(email Email, links []Link, text string) domain.NewsletterSignals {
	var sig domain.NewsletterSignals

	body := strings.ToLower(email.BodyHTML)
	if body == "" {
		body = text
	}
	for _, l := range links {
		target := strings.ToLower(l.Href + " " + l.Text)
		if strings.Contains(target, "unsubscribe") {
			sig.HasUnsubscribeLink = true
		}
		if strings.Contains(target, "view in browser") ||
			strings.Contains(target, "view online") {
			sig.HasViewInBrowserLink = true
		}
	}
	if strings.Contains(body, "unsubscribe") {
		sig.HasUnsubscribeLink = true
	}
	if strings.Contains(body, "view this email in your browser") ||
		strings.Contains(body, "view in browser") {
		sig.HasViewInBrowserLink = true
	}
	for _, phrase := range newsletterFooterPhrases {
		if strings.Contains(body, phrase) || strings.Contains(text, phrase) {
			sig.HasFooterPhrases = true
			break
		}
	}
	return sig
}
