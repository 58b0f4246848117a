package render

import "strings"

// Badge is the label painted in front of an item name for non-default URL schemes
type Badge struct {
	Label string
	Color string
}

type schemeBadge struct {
	prefix string
	badge  Badge
}

// Order matters: "http:" must not shadow "https:" and is checked by exact prefix.
var schemeBadges = []schemeBadge{
	{"mailto:", Badge{Label: "EMAIL", Color: "#f59e0b"}},
	{"tel:", Badge{Label: "PHONE", Color: "#10b981"}},
	{"http:", Badge{Label: "UNSECURE", Color: "#ef4444"}},
	{"ftp:", Badge{Label: "UNSECURE", Color: "#ef4444"}},
	{"sms:", Badge{Label: "SMS", Color: "#10b981"}},
	{"skype:", Badge{Label: "SKYPE", Color: "#0ea5e9"}},
	{"spotify:", Badge{Label: "SPOTIFY", Color: "#22c55e"}},
	{"whatsapp:", Badge{Label: "WHATSAPP", Color: "#16a34a"}},
	{"slack:", Badge{Label: "SLACK", Color: "#a855f7"}},
	{"zoommtg:", Badge{Label: "ZOOM", Color: "#3b82f6"}},
	{"file:", Badge{Label: "FILE", Color: "#6b7280"}},
}

// BadgeFor returns the badge for a URL action, or nil when the scheme is a
// default one (https, relative paths)
func BadgeFor(url string) *Badge {
	lower := strings.ToLower(strings.TrimSpace(url))
	for _, sb := range schemeBadges {
		if strings.HasPrefix(lower, sb.prefix) {
			b := sb.badge
			return &b
		}
	}
	return nil
}
