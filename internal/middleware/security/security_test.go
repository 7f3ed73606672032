package security

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func TestDetector_Reason(t *testing.T) {
	d := NewDetector()

	tests := []struct {
		name   string
		method string
		target string
		agent  string
		want   string
	}{
		{name: "plain question", method: http.MethodGet, target: "/api/answer?q=" + url.QueryEscape("how much did acme make in march 2023?"), want: ""},
		{name: "question mentioning hex", method: http.MethodGet, target: "/api/answer?q=" + url.QueryEscape("did 0x labs pay in 2024"), want: ""},
		{name: "path traversal", method: http.MethodGet, target: "/static/../.env", want: "path:../"},
		{name: "script in query", method: http.MethodGet, target: "/api/answer?q=" + url.QueryEscape("<script>alert(1)</script>"), want: "query:<script"},
		{name: "scanner agent", method: http.MethodGet, target: "/", agent: "sqlmap/1.7", want: "agent:sqlmap"},
		{name: "trace method", method: "TRACE", target: "/", want: "method:TRACE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(tt.method, tt.target, nil)
			if tt.agent != "" {
				r.Header.Set("User-Agent", tt.agent)
			}
			if got := d.Reason(r); got != tt.want {
				t.Errorf("Reason() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetector_DetectCountsSuspicious(t *testing.T) {
	d := NewDetector()
	d.DetectSuspiciousRequest(httptest.NewRequest(http.MethodGet, "/wp-admin", nil))
	d.DetectSuspiciousRequest(httptest.NewRequest(http.MethodGet, "/", nil))

	if got := d.GetMetrics().SuspiciousRequests; got != 1 {
		t.Errorf("SuspiciousRequests = %d, want 1", got)
	}
}

func TestDetector_ExtractClientIP(t *testing.T) {
	d := NewDetector()

	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		realIP     string
		want       string
	}{
		{name: "direct client", remoteAddr: "203.0.113.7:5123", xff: "198.51.100.1", want: "203.0.113.7"},
		{name: "trusted proxy forwards", remoteAddr: "10.0.0.5:80", xff: "198.51.100.1, 10.0.0.5", want: "198.51.100.1"},
		{name: "trusted proxy real ip", remoteAddr: "127.0.0.1:80", realIP: "198.51.100.2", want: "198.51.100.2"},
		{name: "trusted proxy bad header", remoteAddr: "192.168.1.1:80", xff: "not-an-ip", want: "192.168.1.1"},
		{name: "ipv6 loopback", remoteAddr: "[::1]:8080", want: "::1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.realIP != "" {
				r.Header.Set("X-Real-IP", tt.realIP)
			}
			if got := d.ExtractClientIP(r); got != tt.want {
				t.Errorf("ExtractClientIP() = %q, want %q", got, tt.want)
			}
		})
	}

	if got := d.GetMetrics().InvalidIPAttempts; got != 1 {
		t.Errorf("InvalidIPAttempts = %d, want 1", got)
	}
}

func TestDetector_AddTrustedProxy(t *testing.T) {
	d := NewDetector()
	if err := d.AddTrustedProxy("bogus"); err == nil {
		t.Error("expected error for invalid CIDR")
	}
	if err := d.AddTrustedProxy("203.0.113.0/24"); err != nil {
		t.Fatalf("AddTrustedProxy() error = %v", err)
	}

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "203.0.113.9:443"
	r.Header.Set("X-Forwarded-For", "198.51.100.3")
	if got := d.ExtractClientIP(r); got != "198.51.100.3" {
		t.Errorf("ExtractClientIP() = %q, want forwarded address", got)
	}
}

func TestHeadersMiddleware(t *testing.T) {
	h := NewHeadersMiddleware(DefaultHeadersConfig()).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	for _, name := range []string{"Content-Security-Policy", "X-Frame-Options", "X-Content-Type-Options", "Referrer-Policy"} {
		if rr.Header().Get(name) == "" {
			t.Errorf("header %s not set", name)
		}
	}
	if rr.Header().Get("Strict-Transport-Security") != "" {
		t.Error("HSTS must not be sent over plain HTTP")
	}

	rr = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.TLS = &tls.ConnectionState{}
	h.ServeHTTP(rr, req)
	if got := rr.Header().Get("Strict-Transport-Security"); got != "max-age=31536000; includeSubDomains" {
		t.Errorf("HSTS = %q", got)
	}
}

func TestStaticAssetMiddleware(t *testing.T) {
	h := StaticAssetMiddleware(3600)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/static/style.css", nil))
	if got := rr.Header().Get("Cache-Control"); got != "public, max-age=3600" {
		t.Errorf("Cache-Control = %q", got)
	}
}
