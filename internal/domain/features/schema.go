package features

// The unified feature schema: 64 slots in seven contiguous groups. The slot
// order is part of the trained artifact's contract — a vector built in any
// other order produces silently meaningless predictions.

// Group sizes and offsets within the vector
const (
	LexicalSize    = 25
	RuleSize       = 9
	DNSSize        = 5
	PageSize       = 13
	BECSize        = 5
	AttachmentSize = 5
	ContextSize    = 2

	LexicalOffset    = 0
	RuleOffset       = LexicalOffset + LexicalSize
	DNSOffset        = RuleOffset + RuleSize
	PageOffset       = DNSOffset + DNSSize
	BECOffset        = PageOffset + PageSize
	AttachmentOffset = BECOffset + BECSize
	ContextOffset    = AttachmentOffset + AttachmentSize

	// Count is the total slot count expected by the trained artifact
	Count = ContextOffset + ContextSize
)

// Context flag slots
const (
	IdxDNSRan      = ContextOffset
	IdxDeepScanRan = ContextOffset + 1
)

// Names lists the canonical feature names in slot order, matching the
// trainer's feature_names export. Used to cross-check loaded artifacts.
var Names = [Count]string{
	// Group 1: URL/Email lexical
	"NumDots", "SubdomainLevel", "PathLevel", "UrlLength", "NumDash",
	"NumDashInHostname", "AtSymbol", "TildeSymbol", "NumUnderscore",
	"NumPercent", "NumQueryComponents", "NumAmpersand", "NumHash",
	"NumNumericChars", "NoHttps", "IpAddress", "DomainInSubdomains",
	"DomainInPaths", "HttpsInHostname", "HostnameLength", "PathLength",
	"QueryLength", "DoubleSlashInPath", "NumSensitiveWords",
	"FrequentDomainNameMismatch",
	// Group 2: custom rules promoted to model inputs
	"SuspiciousTLD", "ShortenerDomain", "Punycode",
	"LinkMismatchCount", "LinkMismatchRatio", "HeaderMismatch",
	"UrgencyScore", "CredentialRequestScore", "LinkCount",
	// Group 3: DNS
	"DomainExists", "HasMXRecord", "MultipleIPs",
	"RandomStringDomain", "UnresolvedDomains",
	// Group 4: deep-scan page
	"InsecureForms", "RelativeFormAction", "ExtFormAction",
	"AbnormalFormAction", "SubmitInfoToEmail",
	"PctExtHyperlinks", "PctExtResourceUrls", "ExtFavicon",
	"PctNullSelfRedirectHyperlinks",
	"IframeOrFrame", "MissingTitle", "ImagesOnlyInForm",
	"EmbeddedBrandName",
	// Group 5: BEC / linkless
	"FinancialRequestScore", "AuthorityImpersonationScore",
	"PhoneCallbackPattern", "ReplyToMismatch", "IsLinkless",
	// Group 6: attachments
	"HasAttachment", "AttachmentCount", "RiskyAttachmentExtension",
	"DoubleExtensionFlag", "AttachmentNameEntropy",
	// Group 7: context flags
	"dns_ran", "deep_scan_ran",
}
