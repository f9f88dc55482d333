package xhttp

import (
	"net/http"
)

const (
	XForwardedFor         = "X-Forwarded-For"
	XContentTypeOpts      = "X-Content-Type-Options"
	XFrameOpts            = "X-Frame-Options"
	XRequestID            = "X-Request-ID"
	ReferrerPolicy        = "Referrer-Policy"
	ContentSecurityPolicy = "Content-Security-Policy"
	CacheControl          = "Cache-Control"
	XSessionID            = "X-Fixit-Session-ID"
)

const (
	ContentType     = "Content-Type"
	ContentEncoding = "Content-Encoding"
	ContentLength   = "Content-Length"
	AcceptEncoding  = "Accept-Encoding"
	Vary            = "Vary"
	Authorization   = "Authorization"
	UserAgent       = "User-Agent"
)

const BearerPrefix = "Bearer "

func SetHeaderRequestID(w http.ResponseWriter, requestID string) {
	w.Header().Set(XRequestID, requestID)
}

func SetHeaderContentTypeApplicationJSON(w http.ResponseWriter) {
	const applicationJSON = "application/json"
	w.Header().Set(ContentType, applicationJSON)
}

func SetRequestHeaderContentTypeApplicationJSON(r *http.Request) {
	const applicationJSON = "application/json"
	r.Header.Set(ContentType, applicationJSON)
}

func SetRequestHeaderSessionID(r *http.Request, sessionID string) {
	r.Header.Set(XSessionID, sessionID)
}

func SetRequestHeaderBearer(r *http.Request, token string) {
	r.Header.Set(Authorization, BearerPrefix+token)
}
