package dnsscan

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// DNS-over-HTTPS JSON API record types
const (
	typeA  = 1
	typeMX = 15
)

const statusNXDomain = 3

// dohResponse is the subset of the DoH JSON answer we consume
type dohResponse struct {
	Status int `json:"Status"`
	Answer []struct {
		Type int    `json:"type"`
		Data string `json:"data"`
	} `json:"Answer"`
}

// DoHClient queries a DNS-over-HTTPS JSON endpoint such as
// https://dns.google/resolve
type DoHClient struct {
	baseURL string
	http    *http.Client
}

func NewDoHClient(baseURL string, client *http.Client) *DoHClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &DoHClient{baseURL: baseURL, http: client}
}

// Resolve queries A and MX records for one domain. A transport or decode
// failure returns an error; NXDOMAIN is a successful lookup with
// Exists=false.
func (c *DoHClient) Resolve(ctx context.Context, domain string) (Result, error) {
	aResp, err := c.query(ctx, domain, typeA)
	if err != nil {
		return Result{}, fmt.Errorf("resolving A records for %s: %w", domain, err)
	}

	res := Result{}
	if aResp.Status != statusNXDomain {
		for _, ans := range aResp.Answer {
			if ans.Type == typeA {
				res.AddressCount++
			}
		}
		res.Exists = res.AddressCount > 0
	}
	if !res.Exists {
		return res, nil
	}

	mxResp, err := c.query(ctx, domain, typeMX)
	if err != nil {
		// A records already answered the existence question; missing MX
		// data degrades that one signal only
		return res, nil
	}
	for _, ans := range mxResp.Answer {
		if ans.Type == typeMX {
			res.HasMX = true
			break
		}
	}
	return res, nil
}

func (c *DoHClient) query(ctx context.Context, domain string, recordType int) (*dohResponse, error) {
	endpoint := fmt.Sprintf("%s?name=%s&type=%d",
		c.baseURL, url.QueryEscape(domain), recordType)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/dns-json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("doh endpoint returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	var decoded dohResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("decoding doh response: %w", err)
	}
	return &decoded, nil
}
