package visitor

import (
	"regexp"
	"strings"
)

type browserRule struct {
	name    string
	match   func(ua string) bool
	version *regexp.Regexp
}

func has(marker string) func(string) bool {
	return func(ua string) bool { return strings.Contains(ua, marker) }
}

// Edge carries a Chrome/ token and Chrome carries Safari/, so forks are
// checked before the engine they are built on.
var browserRules = []browserRule{
	{name: "Firefox", match: has("Firefox/"), version: regexp.MustCompile(`Firefox/(\S+)`)},
	{name: "Edge", match: has("Edg/"), version: regexp.MustCompile(`Edg/(\S+)`)},
	{name: "Chrome", match: has("Chrome/"), version: regexp.MustCompile(`Chrome/(\S+)`)},
	{
		name:    "Safari",
		match:   func(ua string) bool { return strings.Contains(ua, "Safari/") && !strings.Contains(ua, "Chrome") },
		version: regexp.MustCompile(`Version/(\S+)`),
	},
	{
		name:  "Internet Explorer",
		match: func(ua string) bool { return strings.Contains(ua, "MSIE") || strings.Contains(ua, "Trident/") },
	},
}

// ParseBrowser classifies a User-Agent string.
func ParseBrowser(ua string) Browser {
	for _, r := range browserRules {
		if !r.match(ua) {
			continue
		}
		v := unknownVersion
		if r.version != nil {
			if m := r.version.FindStringSubmatch(ua); m != nil {
				v = m[1]
			}
		}
		return Browser{Name: r.name, Version: v}
	}
	return Browser{Name: UnknownBrowser}
}

var osRules = []struct {
	markers []string
	name    string
}{
	{[]string{"Windows NT 10.0"}, "Windows 10/11"},
	{[]string{"Windows NT 6.3"}, "Windows 8.1"},
	{[]string{"Windows NT 6.2"}, "Windows 8"},
	{[]string{"Windows NT 6.1"}, "Windows 7"},
	{[]string{"Windows NT 6.0"}, "Windows Vista"},
	{[]string{"Windows NT 5.1"}, "Windows XP"},
	{[]string{"Mac OS X"}, "macOS"},
	{[]string{"Linux"}, "Linux"},
	{[]string{"Android"}, "Android"},
	{[]string{"iPhone", "iPad"}, "iOS"},
}

// ParseOS names the platform in a User-Agent string. Rules are tried in
// order, so Android agents (which also say Linux) report Linux and iOS
// agents (which also say Mac OS X) report macOS.
func ParseOS(ua string) string {
	for _, r := range osRules {
		for _, m := range r.markers {
			if strings.Contains(ua, m) {
				return r.name
			}
		}
	}
	return UnknownOS
}
