package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClientMetadata(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		forwarded  string
		userAgent  string
		wantIP     string
	}{
		{
			name:       "remote addr with port",
			remoteAddr: "203.0.113.7:54321",
			userAgent:  "curl/8.0",
			wantIP:     "203.0.113.7",
		},
		{
			name:       "forwarded header wins",
			remoteAddr: "10.0.0.1:443",
			forwarded:  "198.51.100.4",
			wantIP:     "198.51.100.4",
		},
		{
			name:       "first forwarded hop wins",
			remoteAddr: "10.0.0.1:443",
			forwarded:  "198.51.100.4, 10.0.0.2, 10.0.0.3",
			wantIP:     "198.51.100.4",
		},
		{
			name:       "empty forwarded falls back",
			remoteAddr: "203.0.113.7:80",
			forwarded:  "",
			wantIP:     "203.0.113.7",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got ClientMeta
			var ok bool
			handler := ClientMetadata(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got, ok = ClientMetaFromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if tt.userAgent != "" {
				req.Header.Set("User-Agent", tt.userAgent)
			}
			handler.ServeHTTP(httptest.NewRecorder(), req)

			require.True(t, ok)
			require.Equal(t, tt.wantIP, got.IP)
			require.Equal(t, tt.userAgent, got.UserAgent)
		})
	}
}

func TestClientMetaFromContext_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := ClientMetaFromContext(req.Context())
	require.False(t, ok)
}
