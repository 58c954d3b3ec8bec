package scoring

// Built-in trusted domains: widely recognized senders whose legitimate mail
// dominates their traffic. Kept deliberately conservative — inclusion here
// caps the score of matching senders, so each entry is a false-negative
// trade-off. User lists extend or override this set at runtime.
var builtinTrusted = toSet([]string{
	// Major technology companies
	"google.com", "microsoft.com", "apple.com", "amazon.com", "meta.com",
	"facebook.com", "instagram.com", "whatsapp.com", "linkedin.com",
	"twitter.com", "x.com", "netflix.com", "spotify.com", "adobe.com",
	"salesforce.com", "oracle.com", "ibm.com", "intel.com", "nvidia.com",
	"cisco.com", "dell.com", "hp.com", "lenovo.com", "samsung.com",
	"dropbox.com", "box.com", "zoom.us", "slack.com", "atlassian.com",
	"github.com", "gitlab.com", "stackoverflow.com", "digitalocean.com",
	"cloudflare.com", "akamai.com", "godaddy.com", "namecheap.com",
	"wordpress.com", "squarespace.com", "wix.com", "shopify.com",
	"mailchimp.com", "sendgrid.net", "hubspot.com", "zendesk.com",
	"intuit.com", "docusign.com", "twilio.com", "stripe.com",

	// Financial institutions and payments
	"paypal.com", "venmo.com", "chase.com", "bankofamerica.com",
	"wellsfargo.com", "citibank.com", "citi.com", "capitalone.com",
	"usbank.com", "pnc.com", "tdbank.com", "schwab.com", "fidelity.com",
	"vanguard.com", "americanexpress.com", "discover.com", "visa.com",
	"mastercard.com", "barclays.co.uk", "hsbc.com", "santander.com",
	"bnpparibas.com", "creditagricole.fr", "societegenerale.fr",
	"deutsche-bank.de", "ing.com", "rabobank.nl", "ubs.com",
	"creditsuisse.com", "revolut.com", "wise.com", "n26.com",

	// Retail, travel, logistics
	"ebay.com", "etsy.com", "walmart.com", "target.com", "bestbuy.com",
	"costco.com", "homedepot.com", "ikea.com", "aliexpress.com",
	"booking.com", "airbnb.com", "expedia.com", "tripadvisor.com",
	"uber.com", "lyft.com", "doordash.com", "deliveroo.com",
	"fedex.com", "ups.com", "dhl.com", "usps.com", "royalmail.com",
	"laposte.fr", "deutschepost.de",

	// Airlines
	"delta.com", "united.com", "aa.com", "southwest.com", "jetblue.com",
	"britishairways.com", "lufthansa.com", "airfrance.fr", "klm.com",
	"ryanair.com", "easyjet.com",

	// Government and institutions
	"irs.gov", "ssa.gov", "usa.gov", "gov.uk", "service-public.fr",
	"europa.eu", "canada.ca", "ato.gov.au",

	// Media and education
	"nytimes.com", "washingtonpost.com", "wsj.com", "bbc.co.uk",
	"theguardian.com", "reuters.com", "bloomberg.com", "medium.com",
	"substack.com", "coursera.org", "edx.org", "udemy.com",
	"wikipedia.org", "mozilla.org",
})

// Free/public email providers: anyone can register a mailbox here, so these
// domains are explicitly excluded from trusted-domain dampening even when a
// user adds them to a trusted list.
var freeProviders = toSet([]string{
	"gmail.com", "googlemail.com",
	"yahoo.com", "yahoo.co.uk", "yahoo.fr", "yahoo.de", "ymail.com",
	"rocketmail.com",
	"outlook.com", "outlook.fr", "hotmail.com", "hotmail.co.uk",
	"hotmail.fr", "live.com", "live.fr", "msn.com",
	"aol.com", "icloud.com", "me.com", "mac.com",
	"protonmail.com", "proton.me", "pm.me", "tutanota.com", "tuta.io",
	"gmx.com", "gmx.net", "gmx.de", "web.de", "mail.com", "mail.ru",
	"yandex.com", "yandex.ru", "zoho.com", "fastmail.com", "hey.com",
	"qq.com", "163.com", "126.com", "sina.com", "naver.com", "daum.net",
	"rediffmail.com", "seznam.cz", "libero.it", "orange.fr", "free.fr",
	"laposte.net", "t-online.de", "comcast.net", "verizon.net", "att.net",
	"sbcglobal.net", "cox.net", "charter.net", "shaw.ca", "rogers.com",
	"btinternet.com", "sky.com", "virginmedia.com",
})

func toSet(domains []string) map[string]struct{} {
	set := make(map[string]struct{}, len(domains))
	for _, d := range domains {
		set[d] = struct{}{}
	}
	return set
}
