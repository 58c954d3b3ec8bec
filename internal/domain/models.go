package domain

import (
	"time"

	"github.com/google/uuid"
)

// RiskLevel is the four-way categorization of a 0-100 risk score
type RiskLevel string

const (
	RiskLevelLow       RiskLevel = "low"
	RiskLevelMedium    RiskLevel = "medium"
	RiskLevelHigh      RiskLevel = "high"
	RiskLevelDangerous RiskLevel = "dangerous"
)

// LevelForScore converts an integer risk score to a categorical level.
// Boundaries: 0-49 low, 50-75 medium, 76-89 high, 90-100 dangerous.
func LevelForScore(score int) RiskLevel {
	switch {
	case score >= 90:
		return RiskLevelDangerous
	case score >= 76:
		return RiskLevelHigh
	case score >= 50:
		return RiskLevelMedium
	default:
		return RiskLevelLow
	}
}

// LexicalSignals describe the dominant link and sender of an email.
// Field order mirrors group 1 of the unified feature schema.
type LexicalSignals struct {
	NumDots                    float64 `json:"num_dots"`
	SubdomainLevel             float64 `json:"subdomain_level"`
	PathLevel                  float64 `json:"path_level"`
	URLLength                  float64 `json:"url_length"`
	NumDash                    float64 `json:"num_dash"`
	NumDashInHostname          float64 `json:"num_dash_in_hostname"`
	AtSymbol                   float64 `json:"at_symbol"`
	TildeSymbol                float64 `json:"tilde_symbol"`
	NumUnderscore              float64 `json:"num_underscore"`
	NumPercent                 float64 `json:"num_percent"`
	NumQueryComponents         float64 `json:"num_query_components"`
	NumAmpersand               float64 `json:"num_ampersand"`
	NumHash                    float64 `json:"num_hash"`
	NumNumericChars            float64 `json:"num_numeric_chars"`
	NoHTTPS                    float64 `json:"no_https"`
	IPAddress                  float64 `json:"ip_address"`
	DomainInSubdomains         float64 `json:"domain_in_subdomains"`
	DomainInPaths              float64 `json:"domain_in_paths"`
	HTTPSInHostname            float64 `json:"https_in_hostname"`
	HostnameLength             float64 `json:"hostname_length"`
	PathLength                 float64 `json:"path_length"`
	QueryLength                float64 `json:"query_length"`
	DoubleSlashInPath          float64 `json:"double_slash_in_path"`
	NumSensitiveWords          float64 `json:"num_sensitive_words"`
	FrequentDomainNameMismatch float64 `json:"frequent_domain_name_mismatch"`
}

// RuleSignals are the former custom rules promoted to model inputs (group 2)
type RuleSignals struct {
	SuspiciousTLD          float64 `json:"suspicious_tld"`
	ShortenerDomain        float64 `json:"shortener_domain"`
	Punycode               float64 `json:"punycode"`
	LinkMismatchCount      float64 `json:"link_mismatch_count"`
	LinkMismatchRatio      float64 `json:"link_mismatch_ratio"`
	HeaderMismatch         float64 `json:"header_mismatch"`
	UrgencyScore           float64 `json:"urgency_score"`
	CredentialRequestScore float64 `json:"credential_request_score"`
	LinkCount              float64 `json:"link_count"`
}

// DNSSignals are produced by the DNS collaborator when it runs (group 3)
type DNSSignals struct {
	DomainExists       float64 `json:"domain_exists"`
	HasMXRecord        float64 `json:"has_mx_record"`
	MultipleIPs        float64 `json:"multiple_ips"`
	RandomStringDomain float64 `json:"random_string_domain"`
	UnresolvedDomains  float64 `json:"unresolved_domains"`
}

// PageSignals are produced by the deep-scan collaborator when it runs (group 4)
type PageSignals struct {
	InsecureForms                 float64 `json:"insecure_forms"`
	RelativeFormAction            float64 `json:"relative_form_action"`
	ExtFormAction                 float64 `json:"ext_form_action"`
	AbnormalFormAction            float64 `json:"abnormal_form_action"`
	SubmitInfoToEmail             float64 `json:"submit_info_to_email"`
	PctExtHyperlinks              float64 `json:"pct_ext_hyperlinks"`
	PctExtResourceUrls            float64 `json:"pct_ext_resource_urls"`
	ExtFavicon                    float64 `json:"ext_favicon"`
	PctNullSelfRedirectHyperlinks float64 `json:"pct_null_self_redirect_hyperlinks"`
	IframeOrFrame                 float64 `json:"iframe_or_frame"`
	MissingTitle                  float64 `json:"missing_title"`
	ImagesOnlyInForm              float64 `json:"images_only_in_form"`
	EmbeddedBrandName             float64 `json:"embedded_brand_name"`
}

// BECSignals capture social-engineering language, with or without links (group 5)
type BECSignals struct {
	FinancialRequestScore       float64 `json:"financial_request_score"`
	AuthorityImpersonationScore float64 `json:"authority_impersonation_score"`
	PhoneCallbackPattern        float64 `json:"phone_callback_pattern"`
	ReplyToMismatch             float64 `json:"reply_to_mismatch"`
	IsLinkless                  float64 `json:"is_linkless"`
}

// AttachmentSignals describe attached files (group 6)
type AttachmentSignals struct {
	HasAttachment            float64 `json:"has_attachment"`
	AttachmentCount          float64 `json:"attachment_count"`
	RiskyAttachmentExtension float64 `json:"risky_attachment_extension"`
	DoubleExtensionFlag      float64 `json:"double_extension_flag"`
	AttachmentNameEntropy    float64 `json:"attachment_name_entropy"`
}

// NewsletterSignals are content heuristics consumed only by the post-model
// adjustment layer (newsletter dampening); they are not model inputs.
type NewsletterSignals struct {
	HasUnsubscribeLink   bool `json:"has_unsubscribe_link"`
	HasViewInBrowserLink bool `json:"has_view_in_browser_link"`
	HasFooterPhrases     bool `json:"has_footer_phrases"`
}

// Count returns how many of the newsletter indicators are present
func (n NewsletterSignals) Count() int {
	count := 0
	if n.HasUnsubscribeLink {
		count++
	}
	if n.HasViewInBrowserLink {
		count++
	}
	if n.HasFooterPhrases {
		count++
	}
	return count
}

// Signals is the full, possibly partial, input to one scoring call.
// Optional groups (DNS, Page) are nil when their collaborator did not run;
// the corresponding context flag in the feature vector is then 0.
type Signals struct {
	Lexical    *LexicalSignals    `json:"lexical"`
	Rules      *RuleSignals       `json:"rules"`
	DNS        *DNSSignals        `json:"dns"`
	Page       *PageSignals       `json:"page"`
	BEC        *BECSignals        `json:"bec"`
	Attachment *AttachmentSignals `json:"attachment"`
	Newsletter NewsletterSignals  `json:"newsletter"`

	SenderDomain  string `json:"sender_domain"`
	ReplyToDomain string `json:"reply_to_domain"`
}

// RiskAssessment is the engine's output for one scan attempt.
// Created once per scoring call and never mutated; a rescan after a
// deep-scan produces a fresh assessment from a fresh Signals set.
type RiskAssessment struct {
	ID      uuid.UUID `json:"id"`
	EmailID uuid.UUID `json:"email_id,omitempty"`

	Score       int       `json:"score"`    // final 0-100 after rule overlay
	MLScore     int       `json:"ml_score"` // pre-adjustment model score
	Level       RiskLevel `json:"level"`
	Probability float64   `json:"probability"` // calibrated, 0-1
	Confidence  float64   `json:"confidence"`  // distance of probability from 0.5, scaled to 0-1

	DNSRan      bool `json:"dns_ran"`
	DeepScanRan bool `json:"deep_scan_ran"`

	AdjustmentReasons []string `json:"adjustment_reasons"`
	Reasons           []string `json:"reasons"`

	TrustedDomainMatch bool `json:"trusted_domain_match"`
	NewsletterSignals  int  `json:"newsletter_signals"`

	AnalyzedAt time.Time `json:"analyzed_at"`
}

// ScannedEmail is the stored record of an email submitted for scoring
type ScannedEmail struct {
	ID          uuid.UUID `json:"id"`
	Subject     string    `json:"subject"`
	SenderEmail string    `json:"sender_email"`
	SenderName  string    `json:"sender_name"`
	ReceivedAt  time.Time `json:"received_at"`
	ScannedAt   time.Time `json:"scanned_at"`
}
