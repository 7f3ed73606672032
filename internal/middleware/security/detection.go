// Package security applies response hardening headers and flags requests
// that look like scans or injection attempts.
package security

import (
	"fmt"
	"net/http"
	"net/netip"
	"slices"
	"strings"
	"sync/atomic"

	"revenueqa/internal/log"
)

var (
	pathPatterns = []string{
		"../", "..\\", ".env", "wp-admin", "phpmyadmin",
		"admin.php", "config.php", ".git", ".ssh",
		"etc/passwd", "cmd.exe",
	}
	// Query strings carry free-text questions, so only clear injection
	// markers are checked there.
	queryPatterns = []string{
		"<script", "javascript:", "union select", "eval(", "../", "etc/passwd",
	}
	scannerAgents = []string{
		"sqlmap", "nmap", "nikto", "gobuster", "dirb", "masscan", "zgrab",
	}
	unusualMethods = []string{"TRACE", "TRACK", "DEBUG", "CONNECT"}
)

// DetectionMetrics counts detection events.
type DetectionMetrics struct {
	SuspiciousRequests int64
	InvalidIPAttempts  int64
}

// Detector flags suspicious requests and resolves client addresses behind
// trusted proxies.
type Detector struct {
	suspicious     atomic.Int64
	invalidIPs     atomic.Int64
	trustedProxies []netip.Prefix
}

func NewDetector() *Detector {
	return &Detector{
		trustedProxies: []netip.Prefix{
			netip.MustParsePrefix("127.0.0.0/8"),
			netip.MustParsePrefix("::1/128"),
			netip.MustParsePrefix("10.0.0.0/8"),
			netip.MustParsePrefix("172.16.0.0/12"),
			netip.MustParsePrefix("192.168.0.0/16"),
		},
	}
}

// Reason returns why r looks suspicious, or "" when it does not.
func (d *Detector) Reason(r *http.Request) string {
	path := strings.ToLower(r.URL.Path)
	for _, p := range pathPatterns {
		if strings.Contains(path, p) {
			return "path:" + p
		}
	}

	query := strings.ToLower(r.URL.RawQuery)
	for _, values := range r.URL.Query() {
		for _, v := range values {
			query += " " + strings.ToLower(v)
		}
	}
	for _, p := range queryPatterns {
		if strings.Contains(query, p) {
			return "query:" + p
		}
	}

	agent := strings.ToLower(r.Header.Get("User-Agent"))
	for _, a := range scannerAgents {
		if strings.Contains(agent, a) {
			return "agent:" + a
		}
	}

	if slices.Contains(unusualMethods, r.Method) {
		return "method:" + r.Method
	}
	if len(r.URL.String()) > 2048 {
		return "url_length"
	}
	if strings.Count(r.Header.Get("X-Forwarded-For"), ",") > 5 {
		return "forwarded_hops"
	}
	return ""
}

// DetectSuspiciousRequest reports whether r looks suspicious and counts it.
func (d *Detector) DetectSuspiciousRequest(r *http.Request) bool {
	if d.Reason(r) == "" {
		return false
	}
	d.suspicious.Add(1)
	return true
}

// ExtractClientIP returns the client address. Forwarding headers are only
// honoured when the direct peer is a trusted proxy.
func (d *Detector) ExtractClientIP(r *http.Request) string {
	direct, err := netip.ParseAddrPort(r.RemoteAddr)
	if err != nil {
		addr, aerr := netip.ParseAddr(r.RemoteAddr)
		if aerr != nil {
			d.invalidIPs.Add(1)
			return r.RemoteAddr
		}
		direct = netip.AddrPortFrom(addr, 0)
	}
	directIP := direct.Addr().Unmap()

	if !d.isTrustedProxy(directIP) {
		return directIP.String()
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if addr, err := netip.ParseAddr(strings.TrimSpace(first)); err == nil {
			return addr.Unmap().String()
		}
		d.invalidIPs.Add(1)
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		if addr, err := netip.ParseAddr(xri); err == nil {
			return addr.Unmap().String()
		}
		d.invalidIPs.Add(1)
	}
	return directIP.String()
}

func (d *Detector) isTrustedProxy(ip netip.Addr) bool {
	for _, p := range d.trustedProxies {
		if p.Contains(ip) {
			return true
		}
	}
	return false
}

// AddTrustedProxy trusts forwarding headers from cidr.
func (d *Detector) AddTrustedProxy(cidr string) error {
	p, err := netip.ParsePrefix(cidr)
	if err != nil {
		return fmt.Errorf("invalid CIDR %s: %w", cidr, err)
	}
	d.trustedProxies = append(d.trustedProxies, p.Masked())
	return nil
}

func (d *Detector) GetMetrics() DetectionMetrics {
	return DetectionMetrics{
		SuspiciousRequests: d.suspicious.Load(),
		InvalidIPAttempts:  d.invalidIPs.Load(),
	}
}

// Middleware logs suspicious requests and lets them through.
func (d *Detector) Middleware(logger *log.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentSecurity)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if reason := d.Reason(r); reason != "" {
				d.suspicious.Add(1)
				logger.WarnContext(r.Context(), "Suspicious request",
					log.FieldPath, r.URL.Path,
					log.FieldMethod, r.Method,
					log.FieldClientIP, d.ExtractClientIP(r),
					"reason", reason)
			}
			next.ServeHTTP(w, r)
		})
	}
}
