// Package visitor derives what a request says about its sender: the client
// IP as reported by the fronting proxies, and the browser and operating
// system named in the User-Agent.
package visitor

import (
	"net/http"
	"strings"
)

const (
	UnknownIP      = "unknown"
	UnknownBrowser = "unknown"
	UnknownOS      = "unknown system"
	unknownVersion = "unknown"
)

// Browser is a classified user agent.
type Browser struct {
	Name string
	// Version is empty when no browser was recognised.
	Version string
}

// ClientInfo is what the request headers tell us about the caller.
type ClientInfo struct {
	IP        string
	UserAgent string
	Browser   Browser
	OS        string
}

// ExtractClientInfo reads the caller's IP, browser and OS from request headers.
func ExtractClientInfo(h http.Header) ClientInfo {
	ua := h.Get("User-Agent")
	return ClientInfo{
		IP:        ClientIP(h),
		UserAgent: ua,
		Browser:   ParseBrowser(ua),
		OS:        ParseOS(ua),
	}
}

// ClientIP returns CF-Connecting-IP, else the first X-Forwarded-For hop,
// else X-Real-IP, else "unknown".
func ClientIP(h http.Header) string {
	if ip := strings.TrimSpace(h.Get("CF-Connecting-IP")); ip != "" {
		return ip
	}
	if xff := h.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(h.Get("X-Real-IP")); ip != "" {
		return ip
	}
	return UnknownIP
}
