// Package origin decides which browser origins may open a signaling
// connection.
package origin

import (
	"net"
	"net/url"
	"strconv"
	"strings"
)

// NormalizeHeader validates a browser Origin header and returns
// scheme://host[:port] plus the host[:port] part. Default ports are dropped.
// The opaque origin "null" is returned as-is.
func NormalizeHeader(header string) (normalized string, host string, ok bool) {
	trimmed := strings.TrimSpace(header)
	if trimmed == "" {
		return "", "", false
	}
	if trimmed == "null" {
		return "null", "", true
	}

	u, err := url.Parse(trimmed)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", "", false
	}
	if u.User != nil || u.RawQuery != "" || u.Fragment != "" {
		return "", "", false
	}
	if u.Path != "" && u.Path != "/" {
		return "", "", false
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", "", false
	}
	host, ok = normalizeHost(u.Host, scheme)
	if !ok {
		return "", "", false
	}
	return scheme + "://" + host, host, true
}

// IsAllowed reports whether a normalized origin may connect. Same-host
// requests always pass; the allow-list (which may hold "*") only governs
// cross-origin ones.
func IsAllowed(normalized, originHost, requestHost string, allowed []string) bool {
	if sameHost(normalized, originHost, requestHost) {
		return true
	}
	for _, a := range allowed {
		if a == "*" || a == normalized {
			return true
		}
	}
	return false
}

// sameHost compares hosts only, not schemes, so TLS-terminating proxies
// keep working.
func sameHost(normalized, originHost, requestHost string) bool {
	var scheme string
	switch {
	case strings.HasPrefix(normalized, "http://"):
		scheme = "http"
	case strings.HasPrefix(normalized, "https://"):
		scheme = "https"
	default:
		return false
	}
	reqHost, ok := normalizeHost(requestHost, scheme)
	return ok && reqHost == originHost
}

func normalizeHost(raw, scheme string) (string, bool) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return "", false
	}

	hostname, port := raw, ""
	if h, p, err := net.SplitHostPort(raw); err == nil {
		hostname, port = h, p
	} else if strings.HasPrefix(raw, "[") && strings.HasSuffix(raw, "]") {
		hostname = raw[1 : len(raw)-1]
	} else if strings.Contains(raw, ":") {
		return "", false
	}
	if hostname == "" {
		return "", false
	}

	var n uint64
	if port != "" {
		var err error
		n, err = strconv.ParseUint(port, 10, 16)
		if err != nil || n == 0 {
			return "", false
		}
	}
	if (scheme == "http" && n == 80) || (scheme == "https" && n == 443) {
		n = 0
	}

	host := hostname
	if strings.Contains(hostname, ":") {
		host = "[" + hostname + "]"
	}
	if n != 0 {
		host += ":" + strconv.FormatUint(n, 10)
	}
	return host, true
}
