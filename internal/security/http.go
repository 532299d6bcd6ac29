// Package security guards outbound HTTP. The extraction tools fetch
// model-chosen URLs, so every request must be screened against SSRF:
// internal hostnames, private address ranges, and cloud metadata
// endpoints are refused, including after redirects.
package security

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/easel-ai/easel/internal/log"
)

// DefaultMaxResponseSize bounds fetched response bodies.
const DefaultMaxResponseSize int64 = 5 * 1024 * 1024 // 5MB

// HTTP validates outbound request targets.
type HTTP struct {
	maxResponseSize int64
	allowedSchemes  []string
	logger          log.Logger
}

// NewHTTP creates an HTTP validator.
func NewHTTP(logger log.Logger) *HTTP {
	if logger == nil {
		logger = log.NewNop()
	}
	return &HTTP{
		maxResponseSize: DefaultMaxResponseSize,
		allowedSchemes:  []string{"http", "https"},
		logger:          logger,
	}
}

// ValidateURL validates whether a URL is a safe fetch target: scheme,
// hostname, and every resolved IP are checked.
func (v *HTTP) ValidateURL(urlStr string) error {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	scheme := strings.ToLower(parsedURL.Scheme)
	if !slices.Contains(v.allowedSchemes, scheme) {
		return fmt.Errorf("disallowed protocol: %s (only http/https allowed)", parsedURL.Scheme)
	}

	hostname := parsedURL.Hostname()
	if hostname == "" {
		return fmt.Errorf("invalid hostname")
	}

	if isDangerousHostname(hostname) {
		v.logger.Warn("SSRF attempt - dangerous hostname detected",
			"url", urlStr,
			"hostname", hostname,
			"security_event", "ssrf_dangerous_hostname")
		return fmt.Errorf("access denied: accessing internal networks or metadata services is not allowed")
	}

	ips, err := net.LookupIP(hostname)
	if err != nil {
		return fmt.Errorf("unable to resolve hostname: %w", err)
	}

	for _, ip := range ips {
		if isPrivateIP(ip) {
			v.logger.Warn("SSRF attempt - private IP detected",
				"url", urlStr,
				"hostname", hostname,
				"resolved_ip", ip.String(),
				"security_event", "ssrf_private_ip")
			return fmt.Errorf("access denied: accessing internal network IPs is not allowed (%s)", ip.String())
		}
	}

	return nil
}

// MaxResponseSize returns the response size limit.
func (v *HTTP) MaxResponseSize() int64 {
	return v.maxResponseSize
}

// CreateSafeHTTPClient creates an HTTP client that re-validates every
// redirect target and caps the redirect chain.
func (v *HTTP) CreateSafeHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 10 * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 3 {
				v.logger.Warn("excessive redirects detected",
					"url", req.URL.String(),
					"redirect_count", len(via),
					"security_event", "excessive_redirects")
				return fmt.Errorf("stopped after 3 redirects")
			}

			if err := v.ValidateURL(req.URL.String()); err != nil {
				v.logger.Warn("SSRF attempt - unsafe redirect detected",
					"redirect_url", req.URL.String(),
					"original_url", via[0].URL.String(),
					"security_event", "ssrf_unsafe_redirect")
				return fmt.Errorf("redirect to unsafe URL: %w", err)
			}

			return nil
		},
	}
}

func isDangerousHostname(hostname string) bool {
	hostname = strings.ToLower(hostname)

	localHostnames := []string{
		"localhost",
		"127.0.0.1",
		"::1",
		"0.0.0.0",
	}
	if slices.Contains(localHostnames, hostname) {
		return true
	}

	// Cloud service metadata endpoints.
	metadataEndpoints := []string{
		"169.254.169.254", // AWS, Azure, GCP
		"metadata.google.internal",
		"metadata",
	}
	for _, endpoint := range metadataEndpoints {
		if hostname == endpoint || strings.Contains(hostname, endpoint) {
			return true
		}
	}

	return false
}

func isPrivateIP(ip net.IP) bool {
	privateIPv4Ranges := []string{
		"10.0.0.0/8",     // Class A private range
		"172.16.0.0/12",  // Class B private range
		"192.168.0.0/16", // Class C private range
		"127.0.0.0/8",    // Loopback
		"169.254.0.0/16", // Link-local (AWS metadata, etc.)
		"0.0.0.0/8",      // Local network
		"224.0.0.0/4",    // Multicast
		"240.0.0.0/4",    // Reserved
	}
	for _, cidr := range privateIPv4Ranges {
		_, subnet, err := net.ParseCIDR(cidr)
		if err != nil {
			continue
		}
		if subnet.Contains(ip) {
			return true
		}
	}

	if ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
		return true
	}

	// IPv6 Unique Local Address (ULA) fc00::/7
	if len(ip) == net.IPv6len && (ip[0] == 0xfc || ip[0] == 0xfd) {
		return true
	}

	return false
}
