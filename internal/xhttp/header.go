package xhttp

import (
	"net/http"
	"strconv"
	"time"
)

const (
	XForwardedFor    = "X-Forwarded-For"
	XContentTypeOpts = "X-Content-Type-Options"
	XFrameOpts       = "X-Frame-Options"
	XRobotsTag       = "X-Robots-Tag"
	XXSSProtection   = "X-Xss-Protection"
	ReferrerPolicy   = "Referrer-Policy"
	CacheControl     = "Cache-Control"
	Pragma           = "Pragma"
	Expires          = "Expires"
	Allow            = "Allow"
)

const ContentType = "Content-Type"

func SetHeaderRequestID(w http.ResponseWriter, requestID string) {
	const headerName = "X-Request-ID"
	w.Header().Set(headerName, requestID)
}

func SetHeaderContentTypeApplicationJSON(w http.ResponseWriter) {
	const applicationJSON = "application/json"
	w.Header().Set(ContentType, applicationJSON)
}

func SetHeaderRetryAfter(w http.ResponseWriter, retryAfter time.Duration) {
	const retryAfterHeader = "Retry-After"
	w.Header().Set(retryAfterHeader, strconv.Itoa(int(retryAfter.Seconds())))
}

func SetHeaderAllow(w http.ResponseWriter, methods ...string) {
	for _, m := range methods {
		w.Header().Add(Allow, m)
	}
}

// SetHeadersNoCache disables caching of the response. Applied to every
// error response so intermediaries never serve a stale failure body.
func SetHeadersNoCache(w http.ResponseWriter) {
	w.Header().Set(CacheControl, "no-store, no-cache, must-revalidate, max-age=0")
	w.Header().Set(Pragma, "no-cache")
	w.Header().Set(Expires, "0")
}
