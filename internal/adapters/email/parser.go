// Package email parses raw RFC 5322 messages into the extractor's input form
package email

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/jhillyerd/enmime"
	"golang.org/x/net/html"

	"github.com/gophishfree/risk-engine/internal/domain/extraction"
)

// Parser reads MIME envelopes and flattens them for signal extraction
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// bareURLPattern finds URLs in plain-text bodies that carry no HTML part
var bareURLPattern = regexp.MustCompile(`https?://[^\s<>"')\]]+`)

// Parse decodes one raw message. Malformed MIME that enmime can still
// partially decode is accepted; only unreadable envelopes return an error.
func (p *Parser) Parse(raw []byte) (extraction.Email, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return extraction.Email{}, fmt.Errorf("reading mime envelope: %w", err)
	}

	parsed := extraction.Email{
		Subject:        env.GetHeader("Subject"),
		BodyText:       env.Text,
		BodyHTML:       env.HTML,
		FromAddress:    env.GetHeader("From"),
		ReplyToAddress: env.GetHeader("Reply-To"),
		ReturnPath:     env.GetHeader("Return-Path"),
		AuthResults:    env.GetHeader("Authentication-Results"),
	}
	if addrs, err := env.AddressList("From"); err == nil && len(addrs) > 0 {
		parsed.FromName = addrs[0].Name
		parsed.FromAddress = addrs[0].Address
	}

	for _, att := range env.Attachments {
		if att.FileName != "" {
			parsed.AttachmentNames = append(parsed.AttachmentNames, att.FileName)
		}
	}
	for _, inline := range env.Inlines {
		if inline.FileName != "" {
			parsed.AttachmentNames = append(parsed.AttachmentNames, inline.FileName)
		}
	}

	if env.HTML != "" {
		parsed.Links = htmlLinks(env.HTML)
	} else {
		for _, match := range bareURLPattern.FindAllString(env.Text, -1) {
			parsed.Links = append(parsed.Links, extraction.Link{Href: match})
		}
	}
	return parsed, nil
}

// htmlLinks walks the HTML body and collects every anchor with its
// visible text, which the extractor needs for mismatch detection
func htmlLinks(body string) []extraction.Link {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return nil
	}

	var links []extraction.Link
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key == "href" && attr.Val != "" {
					links = append(links, extraction.Link{
						Href: attr.Val,
						Text: nodeText(n),
					})
					break
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return links
}

func nodeText(n *html.Node) string {
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
	return strings.TrimSpace(sb.String())
}
