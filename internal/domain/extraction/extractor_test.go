package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainOfAddress(t *testing.T) {
	tests := []struct {
		addr string
		want string
	}{
		{"user@Example.COM", "example.com"},
		{"Jane Doe <jane@corp.example.net>", "corp.example.net"},
		{"user@example.com.", "example.com"},
		{"not-an-address", ""},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, domainOfAddress(tt.addr), tt.addr)
	}
}

func TestExtract_LexicalFromDominantLink(t *testing.T) {
	e := NewExtractor()

	sig := e.Extract(Email{
		FromAddress: "billing@paypa1-secure.tk",
		BodyText:    "please verify",
		Links: []Link{
			{Href: "http://login.paypa1-secure.tk/account/verify?id=123&step=2", Text: "Verify now"},
		},
	})

	require.NotNil(t, sig.Lexical)
	assert.Equal(t, 1.0, sig.Lexical.NoHTTPS)
	assert.Equal(t, 1.0, sig.Lexical.SubdomainLevel)
	assert.Equal(t, 2.0, sig.Lexical.PathLevel)
	assert.Equal(t, 2.0, sig.Lexical.NumQueryComponents)
	assert.Equal(t, 1.0, sig.Lexical.NumAmpersand)
	assert.Equal(t, 0.0, sig.Lexical.IPAddress)
	assert.Greater(t, sig.Lexical.NumSensitiveWords, 0.0)

	require.NotNil(t, sig.Rules)
	assert.Equal(t, 1.0, sig.Rules.SuspiciousTLD)
	assert.Equal(t, 1.0, sig.Rules.LinkCount)
}

func TestExtract_IPAddressLink(t *testing.T) {
	sig := NewExtractor().Extract(Email{
		FromAddress: "a@b.net",
		Links:       []Link{{Href: "http://203.0.113.7/login"}},
	})

	require.NotNil(t, sig.Lexical)
	assert.Equal(t, 1.0, sig.Lexical.IPAddress)
	assert.Equal(t, 0.0, sig.Lexical.SubdomainLevel)
}

func TestExtract_LinklessEmail(t *testing.T) {
	sig := NewExtractor().Extract(Email{
		FromAddress: "ceo@company-exec.net",
		Subject:     "Quick favor",
		BodyText:    "Need you to handle a wire transfer today. This is the CEO.",
	})

	require.NotNil(t, sig.BEC)
	assert.Equal(t, 1.0, sig.BEC.IsLinkless)
	assert.Greater(t, sig.BEC.FinancialRequestScore, 0.0)
	assert.Greater(t, sig.BEC.AuthorityImpersonationScore, 0.0)

	require.NotNil(t, sig.Lexical)
	assert.Equal(t, 0.0, sig.Lexical.URLLength, "no links means a zeroed lexical group")
	assert.Equal(t, 0.0, sig.Rules.LinkCount)
}

func TestExtract_MailtoLinksIgnored(t *testing.T) {
	sig := NewExtractor().Extract(Email{
		FromAddress: "a@b.net",
		Links: []Link{
			{Href: "mailto:someone@b.net"},
			{Href: "tel:+15550100"},
		},
	})

	assert.Equal(t, 0.0, sig.Rules.LinkCount)
	assert.Equal(t, 1.0, sig.BEC.IsLinkless)
}

func TestRuleSignals_ShortenerAndPunycode(t *testing.T) {
	sig := NewExtractor().Extract(Email{
		FromAddress: "a@b.net",
		Links: []Link{
			{Href: "https://bit.ly/3xYz"},
			{Href: "https://xn--paypl-7ve.com/login"},
		},
	})

	assert.Equal(t, 1.0, sig.Rules.ShortenerDomain)
	assert.Equal(t, 1.0, sig.Rules.Punycode)
}

func TestRuleSignals_LinkTextMismatch(t *testing.T) {
	sig := NewExtractor().Extract(Email{
		FromAddress: "a@b.net",
		Links: []Link{
			{Href: "https://evil.example.net/x", Text: "www.paypal.com"},
			{Href: "https://evil.example.net/y", Text: "Click here"},
		},
	})

	assert.Equal(t, 1.0, sig.Rules.LinkMismatchCount,
		"only domain-shaped anchor text counts as a mismatch")
	assert.Equal(t, 0.5, sig.Rules.LinkMismatchRatio)
}

func TestRuleSignals_HeaderMismatch(t *testing.T) {
	e := NewExtractor()

	byReturnPath := e.Extract(Email{
		FromAddress: "support@microsoft.com",
		ReturnPath:  "bounce@mailer-evil.net",
	})
	assert.Equal(t, 1.0, byReturnPath.Rules.HeaderMismatch)

	byAuthFailure := e.Extract(Email{
		FromAddress: "support@microsoft.com",
		AuthResults: "mx.example.net; spf=fail smtp.mailfrom=microsoft.com",
	})
	assert.Equal(t, 1.0, byAuthFailure.Rules.HeaderMismatch)

	aligned := e.Extract(Email{
		FromAddress: "support@microsoft.com",
		ReturnPath:  "bounce.mail@microsoft.com",
		AuthResults: "mx.example.net; spf=pass dkim=pass",
	})
	assert.Equal(t, 0.0, aligned.Rules.HeaderMismatch)
}

func TestBECSignals_PhoneCallback(t *testing.T) {
	sig := NewExtractor().Extract(Email{
		FromAddress: "a@b.net",
		BodyText:    "Your account has a problem. Call us back at (555) 010-2345 now.",
	})
	assert.Equal(t, 1.0, sig.BEC.PhoneCallbackPattern)

	noCallback := NewExtractor().Extract(Email{
		FromAddress: "a@b.net",
		BodyText:    "Our office number is listed on the website.",
	})
	assert.Equal(t, 0.0, noCallback.BEC.PhoneCallbackPattern)
}

func TestBECSignals_ReplyToMismatch(t *testing.T) {
	sig := NewExtractor().Extract(Email{
		FromAddress:    "ceo@company.com",
		ReplyToAddress: "ceo-office@gmail.com",
	})
	assert.Equal(t, 1.0, sig.BEC.ReplyToMismatch)
	assert.Equal(t, "company.com", sig.SenderDomain)
	assert.Equal(t, "gmail.com", sig.ReplyToDomain)

	same := NewExtractor().Extract(Email{
		FromAddress:    "ceo@company.com",
		ReplyToAddress: "assistant@company.com",
	})
	assert.Equal(t, 0.0, same.BEC.ReplyToMismatch)
}

func TestAttachmentSignals(t *testing.T) {
	tests := []struct {
		name       string
		files      []string
		risky      float64
		doubleExt  float64
	}{
		{"no attachments", nil, 0, 0},
		{"benign document", []string{"report-q3.pdf"}, 0, 0},
		{"executable", []string{"update.exe"}, 1, 0},
		{"double extension", []string{"invoice.pdf.exe"}, 1, 1},
		{"macro document", []string{"sheet.xlsm"}, 1, 0},
		{"risky without decoy", []string{"setup.v2.exe"}, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := attachmentSignals(tt.files)
			assert.Equal(t, tt.risky, sig.RiskyAttachmentExtension)
			assert.Equal(t, tt.doubleExt, sig.DoubleExtensionFlag)
			assert.Equal(t, float64(len(tt.files)), sig.AttachmentCount)
		})
	}
}

func TestShannonEntropy(t *testing.T) {
	assert.Equal(t, 0.0, shannonEntropy(""))
	assert.Equal(t, 0.0, shannonEntropy("aaaa"))
	assert.Greater(t, shannonEntropy("x7qj9z2kp4"), shannonEntropy("invoice"))
}

func TestNewsletterSignals(t *testing.T) {
	sig := NewExtractor().Extract(Email{
		FromAddress: "deals@shop.example.net",
		BodyHTML: `<p>You are receiving this email because you subscribed.</p>
			<a href="https://shop.example.net/unsubscribe">Unsubscribe</a>`,
		Links: []Link{
			{Href: "https://shop.example.net/unsubscribe", Text: "Unsubscribe"},
		},
	})

	assert.True(t, sig.Newsletter.HasUnsubscribeLink)
	assert.True(t, sig.Newsletter.HasFooterPhrases)
	assert.Equal(t, 2, sig.Newsletter.Count())
}

func TestKeywordScore_CountsDistinctEntriesOnce(t *testing.T) {
	text := "urgent urgent urgent payment payment"
	assert.Equal(t, 1.0, keywordScore(text, urgencyKeywords))
	assert.Equal(t, 1.0, keywordScore(text, financialKeywords))
}
