package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
)

type contextKey string

const clientMetaKey contextKey = "clientMeta"

// ClientMeta is the per-request client metadata used for fingerprint
// derivation. IP is the originating client address, not an intermediate
// proxy hop.
type ClientMeta struct {
	IP        string
	UserAgent string
}

// SetClientMeta returns a context with the client metadata set.
func SetClientMeta(ctx context.Context, meta ClientMeta) context.Context {
	return context.WithValue(ctx, clientMetaKey, meta)
}

// ClientMetaFromContext returns the client metadata from the context, if present.
func ClientMetaFromContext(ctx context.Context) (ClientMeta, bool) {
	meta, ok := ctx.Value(clientMetaKey).(ClientMeta)
	return meta, ok
}

// ClientMetadata resolves the client IP and User-Agent for each request
// and stores them in the request context. The first entry of
// X-Forwarded-For wins when present; otherwise RemoteAddr is used with
// its port stripped.
func ClientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		meta := ClientMeta{
			IP:        clientIP(r),
			UserAgent: r.UserAgent(),
		}
		next.ServeHTTP(w, r.WithContext(SetClientMeta(r.Context(), meta)))
	})
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
