// Package referrers maps raw referrer URLs to friendly traffic-source names
// for the dashboard.
package referrers

import (
	"net/url"
	"strings"
)

// Hostnames mapped to the display names the sources dashboard shows. Heavy on
// the channels deal traffic actually arrives from: social shares, messaging
// apps and search.
var knownReferrers = map[string]string{
	// Search engines
	"google.com":     "Google",
	"google.co.in":   "Google",
	"bing.com":       "Bing",
	"duckduckgo.com": "DuckDuckGo",
	"yahoo.com":      "Yahoo",

	// Social and messaging
	"x.com":           "X/Twitter",
	"twitter.com":     "X/Twitter",
	"t.co":            "X/Twitter",
	"facebook.com":    "Facebook",
	"fb.com":          "Facebook",
	"l.facebook.com":  "Facebook",
	"lm.facebook.com": "Facebook",
	"instagram.com":   "Instagram",
	"l.instagram.com": "Instagram",
	"whatsapp.com":    "WhatsApp",
	"wa.me":           "WhatsApp",
	"telegram.org":    "Telegram",
	"t.me":            "Telegram",
	"youtube.com":     "YouTube",
	"youtu.be":        "YouTube",
	"reddit.com":      "Reddit",
	"old.reddit.com":  "Reddit",
	"pinterest.com":   "Pinterest",
	"linkedin.com":    "LinkedIn",
	"sharechat.com":   "ShareChat",

	// Email providers (newsletter clicks)
	"mail.google.com":  "Gmail",
	"outlook.live.com": "Outlook",
	"mail.yahoo.com":   "Yahoo Mail",

	// Link shorteners
	"bit.ly":      "Bitly",
	"tinyurl.com": "TinyURL",
	"cutt.ly":     "Cuttly",
}

// FromURL normalizes a raw referrer value to a display name. Full URLs map
// through their hostname; values that are not URLs (the tracking client may
// already send a label like "Direct") pass through unchanged.
func FromURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	if !strings.Contains(raw, "://") {
		return raw
	}

	parsed, err := url.Parse(raw)
	if err != nil || parsed.Hostname() == "" {
		return raw
	}
	return FriendlyName(parsed.Hostname())
}

// FriendlyName returns a display name for a referrer hostname. Unknown hosts
// come back with the www. prefix stripped and the first letter capitalized.
func FriendlyName(hostname string) string {
	hostname = strings.ToLower(hostname)

	if name, ok := knownReferrers[hostname]; ok {
		return name
	}

	if stripped, ok := strings.CutPrefix(hostname, "www."); ok {
		if name, found := knownReferrers[stripped]; found {
			return name
		}
		hostname = stripped
	}

	// Subdomains of known referrers inherit the parent's name.
	for domain, name := range knownReferrers {
		if strings.HasSuffix(hostname, "."+domain) {
			return name
		}
	}

	return capitalizeFirst(hostname)
}

func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
