package scoring

import "github.com/gophishfree/risk-engine/internal/domain"

// maxReasons bounds the explanation list for display purposes
const maxReasons = 8

// reasonCheck pairs a signal predicate with its human-readable explanation
type reasonCheck struct {
	applies func(sig domain.Signals, probability float64) bool
	text    string
}

// reasonChecks is evaluated in insertion order; no priority guarantee beyond
// that. Each check reads signal values directly — never the final score — so
// explanations stay verifiable against the raw inputs.
var reasonChecks = []reasonCheck{
	{
		applies: func(s domain.Signals, p float64) bool { return p >= 0.85 },
		text:    "Statistical model rates this email as high risk",
	},
	{
		applies: func(s domain.Signals, _ float64) bool { return s.Rules != nil && s.Rules.Punycode >= 1 },
		text:    "Link domain uses punycode encoding",
	},
	{
		applies: func(s domain.Signals, _ float64) bool { return s.Lexical != nil && s.Lexical.IPAddress >= 1 },
		text:    "Link points to a raw IP address",
	},
	{
		applies: func(s domain.Signals, _ float64) bool { return s.Lexical != nil && s.Lexical.NoHTTPS >= 1 },
		text:    "Link does not use HTTPS",
	},
	{
		applies: func(s domain.Signals, _ float64) bool { return s.Rules != nil && s.Rules.SuspiciousTLD >= 1 },
		text:    "Link uses a high-risk top-level domain",
	},
	{
		applies: func(s domain.Signals, _ float64) bool { return s.Rules != nil && s.Rules.ShortenerDomain >= 1 },
		text:    "Link goes through a URL shortener",
	},
	{
		applies: func(s domain.Signals, _ float64) bool { return s.Rules != nil && s.Rules.LinkMismatchCount >= 1 },
		text:    "Displayed link text does not match its destination",
	},
	{
		applies: func(s domain.Signals, _ float64) bool { return s.Rules != nil && s.Rules.HeaderMismatch >= 1 },
		text:    "Sender headers disagree about the origin domain",
	},
	{
		applies: func(s domain.Signals, _ float64) bool { return s.BEC != nil && s.BEC.ReplyToMismatch >= 1 },
		text:    "Replies are redirected to a different domain",
	},
	{
		applies: func(s domain.Signals, _ float64) bool { return s.BEC != nil && s.BEC.FinancialRequestScore >= 2 },
		text:    "Contains financial request language",
	},
	{
		applies: func(s domain.Signals, _ float64) bool {
			return s.BEC != nil && s.BEC.AuthorityImpersonationScore >= 2
		},
		text: "Impersonates an authority figure",
	},
	{
		applies: func(s domain.Signals, _ float64) bool { return s.BEC != nil && s.BEC.PhoneCallbackPattern >= 1 },
		text:    "Asks for a phone callback",
	},
	{
		applies: func(s domain.Signals, _ float64) bool { return s.Rules != nil && s.Rules.UrgencyScore >= 3 },
		text:    "Uses urgent, time-pressure language",
	},
	{
		applies: func(s domain.Signals, _ float64) bool {
			return s.Rules != nil && s.Rules.CredentialRequestScore >= 2
		},
		text: "Requests credentials or sensitive information",
	},
	{
		applies: func(s domain.Signals, _ float64) bool {
			return s.Attachment != nil && s.Attachment.RiskyAttachmentExtension >= 1
		},
		text: "Carries an attachment with a risky file type",
	},
	{
		applies: func(s domain.Signals, _ float64) bool {
			return s.Attachment != nil && s.Attachment.DoubleExtensionFlag >= 1
		},
		text: "Attachment filename hides a double extension",
	},
	{
		applies: func(s domain.Signals, _ float64) bool { return s.DNS != nil && s.DNS.DomainExists < 1 },
		text:    "Sender domain does not resolve",
	},
	{
		applies: func(s domain.Signals, _ float64) bool {
			return s.DNS != nil && s.DNS.DomainExists >= 1 && s.DNS.HasMXRecord < 1
		},
		text: "Sender domain has no mail servers",
	},
	{
		applies: func(s domain.Signals, _ float64) bool { return s.DNS != nil && s.DNS.RandomStringDomain >= 1 },
		text:    "Sender domain looks machine-generated",
	},
	{
		applies: func(s domain.Signals, _ float64) bool { return s.DNS != nil && s.DNS.UnresolvedDomains >= 1 },
		text:    "One or more linked domains do not resolve",
	},
	{
		applies: func(s domain.Signals, _ float64) bool { return s.Page != nil && s.Page.InsecureForms >= 1 },
		text:    "Linked page submits form data without encryption",
	},
	{
		applies: func(s domain.Signals, _ float64) bool { return s.Page != nil && s.Page.SubmitInfoToEmail >= 1 },
		text:    "Linked page submits form data to an email address",
	},
	{
		applies: func(s domain.Signals, _ float64) bool { return s.Page != nil && s.Page.EmbeddedBrandName >= 1 },
		text:    "Linked page appears to impersonate a known brand",
	},
}

// DeriveReasons inspects the signal values and calibrated probability and
// returns up to maxReasons short explanations. This is explainability only:
// it never touches the score, and it stays computable independently of the
// adjustment layer so tests can check the two never disagree about which
// signals are on.
func DeriveReasons(sig domain.Signals, probability float64) []string {
	reasons := make([]string, 0, maxReasons)
	for _, check := range reasonChecks {
		if len(reasons) >= maxReasons {
			break
		}
		if check.applies(sig, probability) {
			reasons = append(reasons, check.text)
		}
	}
	return reasons
}
