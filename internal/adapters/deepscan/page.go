package deepscan

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/gophishfree/risk-engine/internal/domain"
)

// pageFeatures derives the deep-scan signal group for a single fetched page.
// pageURL is the final URL after redirects so host comparisons reflect where
// the content actually lives.
func pageFeatures(doc *html.Node, pageURL *url.URL) domain.PageSignals {
	w := pageWalker{
		pageHost:   strings.ToLower(pageURL.Hostname()),
		pageScheme: pageURL.Scheme,
	}
	w.walk(doc)

	sig := domain.PageSignals{
		InsecureForms:      boolSignal(w.insecureForms),
		RelativeFormAction: boolSignal(w.relativeFormAction),
		ExtFormAction:      boolSignal(w.extFormAction),
		AbnormalFormAction: boolSignal(w.abnormalFormAction),
		SubmitInfoToEmail:  boolSignal(w.mailtoFormAction),
		ExtFavicon:         boolSignal(w.extFavicon),
		IframeOrFrame:      boolSignal(w.hasIframe),
		MissingTitle:       boolSignal(!w.hasTitle),
		ImagesOnlyInForm:   boolSignal(w.imagesOnlyForm),
		EmbeddedBrandName:  boolSignal(w.embeddedBrand()),
	}
	if w.hyperlinks > 0 {
		sig.PctExtHyperlinks = float64(w.extHyperlinks) / float64(w.hyperlinks)
		sig.PctNullSelfRedirectHyperlinks = float64(w.nullHyperlinks) / float64(w.hyperlinks)
	}
	if w.resources > 0 {
		sig.PctExtResourceUrls = float64(w.extResources) / float64(w.resources)
	}
	return sig
}

// pageWalker accumulates raw counts during a single DOM traversal
type pageWalker struct {
	pageHost   string
	pageScheme string

	hyperlinks     int
	extHyperlinks  int
	nullHyperlinks int
	resources      int
	extResources   int
	linkHostFreq   map[string]int

	insecureForms      bool
	relativeFormAction bool
	extFormAction      bool
	abnormalFormAction bool
	mailtoFormAction   bool
	extFavicon         bool
	hasIframe          bool
	hasTitle           bool
	imagesOnlyForm     bool
}

func (w *pageWalker) walk(n *html.Node) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "title":
			if strings.TrimSpace(textContent(n)) != "" {
				w.hasTitle = true
			}
		case "a":
			w.countHyperlink(attr(n, "href"))
		case "form":
			w.inspectForm(n)
		case "iframe", "frame":
			w.hasIframe = true
		case "img", "script":
			w.countResource(attr(n, "src"))
		case "link":
			rel := strings.ToLower(attr(n, "rel"))
			href := attr(n, "href")
			if strings.Contains(rel, "icon") {
				if host := hostOf(href); host != "" && host != w.pageHost {
					w.extFavicon = true
				}
			} else {
				w.countResource(href)
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}
}

func (w *pageWalker) countHyperlink(href string) {
	w.hyperlinks++
	trimmed := strings.TrimSpace(strings.ToLower(href))
	if trimmed == "" || trimmed == "#" || trimmed == "#content" ||
		strings.HasPrefix(trimmed, "javascript:") {
		w.nullHyperlinks++
		return
	}
	if host := hostOf(href); host != "" {
		if w.linkHostFreq == nil {
			w.linkHostFreq = make(map[string]int)
		}
		w.linkHostFreq[host]++
		if host != w.pageHost {
			w.extHyperlinks++
		}
	}
}

func (w *pageWalker) countResource(src string) {
	if src == "" {
		return
	}
	w.resources++
	if host := hostOf(src); host != "" && host != w.pageHost {
		w.extResources++
	}
}

func (w *pageWalker) inspectForm(form *html.Node) {
	action := strings.TrimSpace(attr(form, "action"))
	lower := strings.ToLower(action)

	switch {
	case strings.HasPrefix(lower, "mailto:"):
		w.mailtoFormAction = true
	case action == "" || action == "#" || lower == "about:blank" ||
		strings.HasPrefix(lower, "javascript:"):
		w.abnormalFormAction = true
	case strings.HasPrefix(lower, "http://"):
		w.insecureForms = true
		if host := hostOf(action); host != "" && host != w.pageHost {
			w.extFormAction = true
		}
	case strings.HasPrefix(lower, "https://"):
		if host := hostOf(action); host != "" && host != w.pageHost {
			w.extFormAction = true
		}
	default:
		w.relativeFormAction = true
		if w.pageScheme == "http" {
			w.insecureForms = true
		}
	}

	if formIsImagesOnly(form) {
		w.imagesOnlyForm = true
	}
}

// embeddedBrand reports whether the most-linked external domain's name shows
// up inside this page's own hostname or looks impersonated by it, the
// pattern of paypal.com.secure-login.example hosting paypal assets
func (w *pageWalker) embeddedBrand() bool {
	var topHost string
	topCount := 0
	for host, count := range w.linkHostFreq {
		if host != w.pageHost && count > topCount {
			topHost, topCount = host, count
		}
	}
	if topHost == "" || topCount < 2 {
		return false
	}
	brand := firstLabel(registrable(topHost))
	return brand != "" && brand != firstLabel(registrable(w.pageHost)) &&
		strings.Contains(w.pageHost, brand)
}

// formIsImagesOnly reports a form with image content but no visible text,
// a common credential-harvesting layout
func formIsImagesOnly(form *html.Node) bool {
	hasImage := false
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.TextNode && strings.TrimSpace(n.Data) != "" {
			return false
		}
		if n.Type == html.ElementNode && n.Data == "img" {
			hasImage = true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if !walk(c) {
				return false
			}
		}
		return true
	}
	return walk(form) && hasImage
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func hostOf(raw string) string {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Hostname())
}

func registrable(host string) string {
	labels := strings.Split(host, ".")
	if len(labels) < 2 {
		return host
	}
	return strings.Join(labels[len(labels)-2:], ".")
}

func firstLabel(host string) string {
	if idx := strings.Index(host, "."); idx > 0 {
		return host[:idx]
	}
	return host
}

func boolSignal(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
