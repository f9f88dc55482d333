package xhttp

import (
	"net"
	"net/http"
	"strings"
)

// GetRequestIP prefers the first hop of X-Forwarded-For, then RemoteAddr.
// Ports and IPv6 brackets are stripped.
func GetRequestIP(r *http.Request) string {
	if xff := r.Header.Get(XForwardedFor); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return stripPort(strings.TrimSpace(first))
	}
	return stripPort(r.RemoteAddr)
}

func stripPort(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return strings.Trim(addr, "[]")
}

func GetRequestHeaderSessionID(r *http.Request) string {
	return r.Header.Get(XSessionID)
}

// GetBearerToken returns the token from an "Authorization: Bearer" header.
func GetBearerToken(r *http.Request) (string, bool) {
	return ParseBearer(r.Header.Get(Authorization))
}

func ParseBearer(header string) (string, bool) {
	if len(header) < len(BearerPrefix) || !strings.EqualFold(header[:len(BearerPrefix)], BearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(BearerPrefix):])
	return token, token != ""
}
