package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProvenance_BuiltinTrusted(t *testing.T) {
	prov := NewProvenanceSets(nil, nil)

	assert.True(t, prov.IsTrusted("paypal.com"))
	assert.True(t, prov.IsTrusted("PayPal.COM"), "matching is case-insensitive")
	assert.False(t, prov.IsTrusted("paypal-support.com"))
	assert.False(t, prov.IsTrusted(""))
}

func TestProvenance_ParentDomainMatching(t *testing.T) {
	prov := NewProvenanceSets([]string{"corp.example.com"}, nil)

	tests := []struct {
		domain  string
		trusted bool
	}{
		{"mail.google.com", true},        // 2-label parent google.com is built-in
		{"eu.mail.google.com", true},     // matches at 2-label depth
		{"corp.example.com", true},       // exact user entry
		{"mx.corp.example.com", true},    // 3-label parent matches user entry
		{"notgoogle.com", false},
		{"google.com.evil.net", false},   // trusted label buried mid-domain does not count
	}

	for _, tt := range tests {
		assert.Equal(t, tt.trusted, prov.IsTrusted(tt.domain), tt.domain)
	}
}

func TestProvenance_BlockedOverridesTrusted(t *testing.T) {
	prov := NewProvenanceSets(
		[]string{"partner.io"},
		[]string{"google.com", "partner.io"},
	)

	// Blocked wins over both built-in and user-trusted membership
	assert.False(t, prov.IsTrusted("google.com"))
	assert.False(t, prov.IsTrusted("mail.google.com"), "2-label parent block applies")
	assert.False(t, prov.IsTrusted("partner.io"))
	assert.True(t, prov.IsBlocked("mail.google.com"))

	// Unrelated domains are unaffected
	assert.True(t, prov.IsTrusted("microsoft.com"))
}

func TestProvenance_FreeProviders(t *testing.T) {
	prov := NewProvenanceSets([]string{"gmail.com"}, nil)

	assert.True(t, prov.IsFreeProvider("gmail.com"))
	assert.True(t, prov.IsFreeProvider("outlook.com"))
	assert.True(t, prov.IsFreeProvider("Yahoo.co.uk"))
	assert.False(t, prov.IsFreeProvider("example.com"))

	// A user-trusted entry does not stop a domain from being a free provider;
	// the adjustment layer uses that to refuse dampening
	assert.True(t, prov.IsTrusted("gmail.com"))
	assert.True(t, prov.IsFreeProvider("gmail.com"))
}

func TestDomainCandidates(t *testing.T) {
	assert.Equal(t,
		[]string{"mail.eu.example.com", "eu.example.com", "example.com"},
		domainCandidates("Mail.EU.Example.com."),
	)
	assert.Equal(t, []string{"example.com"}, domainCandidates("example.com"))
	assert.Nil(t, domainCandidates("  "))
}
