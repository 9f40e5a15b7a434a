package xhttp

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// proxyIPHeaders are checked in priority order when resolving the real
// client IP behind CDNs and reverse proxies. The first header carrying a
// syntactically valid, non-reserved address wins.
var proxyIPHeaders = []string{
	"CF-Connecting-IP",
	"X-Forwarded-For",
	"X-Real-IP",
	"X-Cluster-Client-IP",
	"Forwarded-For",
	"Forwarded",
}

// ClientIP resolves the originating client address of a request. Proxy
// headers are consulted before the direct connection address; spoofable
// values naming private or otherwise reserved ranges are ignored so a
// forged header cannot alias a caller onto a loopback bucket.
func ClientIP(r *http.Request) string {
	for _, header := range proxyIPHeaders {
		value := r.Header.Get(header)
		if value == "" {
			continue
		}
		if ip := extractPublicIP(header, value); ip != "" {
			return ip
		}
	}
	if ip, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return ip
	}
	return r.RemoteAddr
}

func extractPublicIP(header, value string) string {
	for _, candidate := range splitHeaderValue(header, value) {
		if ip, ok := parseIP(candidate); ok && isPublicIP(ip) {
			return ip.String()
		}
	}
	return ""
}

// splitHeaderValue breaks a header into individual address candidates.
// X-Forwarded-For style headers are comma lists; RFC 7239 Forwarded
// carries semicolon-separated pairs with a for= directive.
func splitHeaderValue(header, value string) []string {
	if !strings.EqualFold(header, "Forwarded") {
		parts := strings.Split(value, ",")
		for i, p := range parts {
			parts[i] = strings.TrimSpace(p)
		}
		return parts
	}

	var candidates []string
	for element := range strings.SplitSeq(value, ",") {
		for pair := range strings.SplitSeq(element, ";") {
			k, v, found := strings.Cut(strings.TrimSpace(pair), "=")
			if !found || !strings.EqualFold(strings.TrimSpace(k), "for") {
				continue
			}
			candidates = append(candidates, strings.Trim(strings.TrimSpace(v), `"`))
		}
	}
	return candidates
}

func parseIP(s string) (netip.Addr, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return netip.Addr{}, false
	}
	if host, _, err := net.SplitHostPort(s); err == nil {
		s = host
	}
	s = strings.Trim(s, "[]")
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Addr{}, false
	}
	return addr, true
}

func isPublicIP(addr netip.Addr) bool {
	switch {
	case addr.IsLoopback(),
		addr.IsPrivate(),
		addr.IsLinkLocalUnicast(),
		addr.IsLinkLocalMulticast(),
		addr.IsMulticast(),
		addr.IsUnspecified():
		return false
	}
	return true
}
