package server

import (
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"

	"github.com/jrsteele09/videotube-server/internal/config"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenFromRequest(t *testing.T) {
	tests := []struct {
		name   string
		cookie string
		header string
		want   string
	}{
		{"none", "", "", ""},
		{"cookie", "c-token", "", "c-token"},
		{"bearer", "", "Bearer h-token", "h-token"},
		{"bearer lower case", "", "bearer h-token", "h-token"},
		{"cookie first", "c-token", "Bearer h-token", "c-token"},
		{"basic ignored", "", "Basic dXNlcjpwYXNz", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != "" {
				r.AddCookie(&http.Cookie{Name: accessTokenCookie, Value: tt.cookie})
			}
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			require.Equal(t, tt.want, accessTokenFromRequest(r))
		})
	}
}

func TestClientIP(t *testing.T) {
	s := &Server{proxies: config.TrustedProxies{netip.MustParsePrefix("10.0.0.0/8")}}

	tests := []struct {
		name   string
		remote string
		xff    string
		want   string
	}{
		{"direct peer", "192.0.2.10:5555", "", "192.0.2.10"},
		{"untrusted peer ignores header", "192.0.2.10:5555", "203.0.113.7", "192.0.2.10"},
		{"trusted proxy", "10.0.0.1:5555", "203.0.113.7", "203.0.113.7"},
		{"rightmost untrusted hop", "10.0.0.1:5555", "198.51.100.1, 203.0.113.7, 10.0.0.2", "203.0.113.7"},
		{"trusted proxy without header", "10.0.0.1:5555", "", "10.0.0.1"},
		{"garbage hop", "10.0.0.1:5555", "not-an-ip", "10.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			require.Equal(t, tt.want, s.clientIP(r))
		})
	}
}
