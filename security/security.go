// Package security decides which URLs may be fetched or followed and
// optionally cleans untrusted markup before it is scanned.
package security

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// ErrBlocked is returned for hosts on the block list.
	ErrBlocked = errors.New("domain is blocked")
	// ErrInsecure is returned for plain http URLs in HTTPS-only mode.
	ErrInsecure = errors.New("insecure URL refused")
	// ErrScheme is returned for URLs that are not http or https.
	ErrScheme = errors.New("unsupported URL scheme")
)

// Config is the security section of the configuration file.
type Config struct {
	BlockedDomains []string `toml:"blocked_domains" envconfig:"BLOCKED_DOMAINS"`
	HTTPSOnly      bool     `toml:"https_only" envconfig:"HTTPS_ONLY"`
	Sanitize       bool     `toml:"sanitize"`
}

// DefaultBlockedDomains seed the block list.
var DefaultBlockedDomains = []string{
	"malware.example.com",
	"phishing.example.com",
}

// Policy applies a Config. It is immutable and safe for concurrent use.
type Policy struct {
	blocked   []string
	httpsOnly bool
	sanitizer *bluemonday.Policy
}

// NewPolicy builds a policy from cfg.
func NewPolicy(cfg Config) *Policy {
	p := &Policy{httpsOnly: cfg.HTTPSOnly}
	for _, d := range cfg.BlockedDomains {
		d = strings.Trim(strings.ToLower(strings.TrimSpace(d)), ".")
		if d != "" {
			p.blocked = append(p.blocked, d)
		}
	}
	if cfg.Sanitize {
		p.sanitizer = bluemonday.UGCPolicy()
	}
	return p
}

// Allow returns nil if u may be fetched.
func (p *Policy) Allow(u *url.URL) error {
	switch strings.ToLower(u.Scheme) {
	case "https":
	case "http":
		if p.httpsOnly {
			return ErrInsecure
		}
	default:
		return fmt.Errorf("%w: %q", ErrScheme, u.Scheme)
	}

	if p.Blocked(u.Hostname()) {
		return fmt.Errorf("%w: %s", ErrBlocked, u.Hostname())
	}
	return nil
}

// Blocked reports whether host or one of its parent domains is blocked.
func (p *Policy) Blocked(host string) bool {
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	for _, d := range p.blocked {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// Sanitizes reports whether Sanitize changes markup.
func (p *Policy) Sanitizes() bool {
	return p.sanitizer != nil
}

// Sanitize strips active content from markup when sanitising is enabled and
// returns it unchanged otherwise.
func (p *Policy) Sanitize(markup string) string {
	if p.sanitizer == nil {
		return markup
	}
	return p.sanitizer.Sanitize(markup)
}

// Info summarises the transport security of a response.
type Info struct {
	HTTPS                   bool   `json:"https"`
	ContentSecurityPolicy   string `json:"content_security_policy,omitempty"`
	FrameOptions            string `json:"frame_options,omitempty"`
	ContentTypeOptions      string `json:"content_type_options,omitempty"`
	StrictTransportSecurity string `json:"strict_transport_security,omitempty"`
}

// Check inspects a URL and the response headers it was served with.
// header may be nil.
func Check(u *url.URL, header http.Header) Info {
	info := Info{HTTPS: u != nil && strings.EqualFold(u.Scheme, "https")}
	if header != nil {
		info.ContentSecurityPolicy = header.Get("Content-Security-Policy")
		info.FrameOptions = header.Get("X-Frame-Options")
		info.ContentTypeOptions = header.Get("X-Content-Type-Options")
		info.StrictTransportSecurity = header.Get("Strict-Transport-Security")
	}
	return info
}

// AllowsResource applies the page's content security policy to a
// subresource. Only the default-src 'self' form is understood, and it is
// read as "secure origins only".
func (i Info) AllowsResource(resource string) bool {
	if !strings.Contains(i.ContentSecurityPolicy, "default-src 'self'") {
		return true
	}
	lower := strings.ToLower(resource)
	return strings.HasPrefix(lower, "https://") || strings.HasPrefix(lower, "data:")
}
