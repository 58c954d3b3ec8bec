package features

import (
	"fmt"
	"math"

	"github.com/gophishfree/risk-engine/internal/domain"
)

// Builder assembles the possibly-partial signal groups of a scan into one
// fixed-length, fixed-order vector. A group whose collaborator did not run
// (nil pointer) is zero-filled and the matching context flag stays 0; that is
// the expected common case, not an error.
//
// The only hard failure mode is a slot-count mismatch between the fill
// functions and the schema constants — a programming error, not a runtime
// condition. In strict mode the Builder panics so tests catch it; otherwise
// it degrades to a best-effort zero-filled vector.
type Builder struct {
	strict bool
}

// NewBuilder creates a feature vector builder.
// strict controls whether schema invariant violations panic (development)
// or degrade to zero-fill (production).
func NewBuilder(strict bool) *Builder {
	return &Builder{strict: strict}
}

// Build produces the 64-slot feature vector for one scoring call.
// dnsRan and deepScanRan state whether the optional collaborators executed;
// they are recorded in the context-flag slots regardless of whether the
// corresponding group carries data.
func (b *Builder) Build(sig domain.Signals, dnsRan, deepScanRan bool) []float64 {
	vec := make([]float64, Count)

	written := 0
	written += fillLexical(vec[LexicalOffset:LexicalOffset+LexicalSize], sig.Lexical)
	written += fillRules(vec[RuleOffset:RuleOffset+RuleSize], sig.Rules)
	written += fillDNS(vec[DNSOffset:DNSOffset+DNSSize], sig.DNS)
	written += fillPage(vec[PageOffset:PageOffset+PageSize], sig.Page)
	written += fillBEC(vec[BECOffset:BECOffset+BECSize], sig.BEC)
	written += fillAttachment(vec[AttachmentOffset:AttachmentOffset+AttachmentSize], sig.Attachment)

	vec[IdxDNSRan] = boolToFloat(dnsRan && sig.DNS != nil)
	vec[IdxDeepScanRan] = boolToFloat(deepScanRan && sig.Page != nil)
	written += ContextSize

	if written != Count {
		if b.strict {
			panic(fmt.Sprintf("feature vector slot mismatch: wrote %d, schema expects %d", written, Count))
		}
		// Best effort in production: the zero-filled slots stay zero
	}

	return vec
}

// sanitize coerces NaN and infinities to 0 so a single bad upstream value
// cannot poison the whole vector
func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func fillLexical(dst []float64, s *domain.LexicalSignals) int {
	if s == nil {
		return len(dst)
	}
	values := [LexicalSize]float64{
		s.NumDots, s.SubdomainLevel, s.PathLevel, s.URLLength, s.NumDash,
		s.NumDashInHostname, s.AtSymbol, s.TildeSymbol, s.NumUnderscore,
		s.NumPercent, s.NumQueryComponents, s.NumAmpersand, s.NumHash,
		s.NumNumericChars, s.NoHTTPS, s.IPAddress, s.DomainInSubdomains,
		s.DomainInPaths, s.HTTPSInHostname, s.HostnameLength, s.PathLength,
		s.QueryLength, s.DoubleSlashInPath, s.NumSensitiveWords,
		s.FrequentDomainNameMismatch,
	}
	return copySanitized(dst, values[:])
}

func fillRules(dst []float64, s *domain.RuleSignals) int {
	if s == nil {
		return len(dst)
	}
	values := [RuleSize]float64{
		s.SuspiciousTLD, s.ShortenerDomain, s.Punycode,
		s.LinkMismatchCount, s.LinkMismatchRatio, s.HeaderMismatch,
		s.UrgencyScore, s.CredentialRequestScore, s.LinkCount,
	}
	return copySanitized(dst, values[:])
}

func fillDNS(dst []float64, s *domain.DNSSignals) int {
	if s == nil {
		return len(dst)
	}
	values := [DNSSize]float64{
		s.DomainExists, s.HasMXRecord, s.MultipleIPs,
		s.RandomStringDomain, s.UnresolvedDomains,
	}
	return copySanitized(dst, values[:])
}

func fillPage(dst []float64, s *domain.PageSignals) int {
	if s == nil {
		return len(dst)
	}
	values := [PageSize]float64{
		s.InsecureForms, s.RelativeFormAction, s.ExtFormAction,
		s.AbnormalFormAction, s.SubmitInfoToEmail,
		s.PctExtHyperlinks, s.PctExtResourceUrls, s.ExtFavicon,
		s.PctNullSelfRedirectHyperlinks,
		s.IframeOrFrame, s.MissingTitle, s.ImagesOnlyInForm,
		s.EmbeddedBrandName,
	}
	return copySanitized(dst, values[:])
}

func fillBEC(dst []float64, s *domain.BECSignals) int {
	if s == nil {
		return len(dst)
	}
	values := [BECSize]float64{
		s.FinancialRequestScore, s.AuthorityImpersonationScore,
		s.PhoneCallbackPattern, s.ReplyToMismatch, s.IsLinkless,
	}
	return copySanitized(dst, values[:])
}

func fillAttachment(dst []float64, s *domain.AttachmentSignals) int {
	if s == nil {
		return len(dst)
	}
	values := [AttachmentSize]float64{
		s.HasAttachment, s.AttachmentCount, s.RiskyAttachmentExtension,
		s.DoubleExtensionFlag, s.AttachmentNameEntropy,
	}
	return copySanitized(dst, values[:])
}

func copySanitized(dst, src []float64) int {
	n := copy(dst, src)
	for i := 0; i < n; i++ {
		dst[i] = sanitize(dst[i])
	}
	return n
}
