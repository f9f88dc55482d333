package presenter

import (
	"strconv"
	"time"
	"unicode/utf8"
)

const (
	DefaultTruncateLimit = 40
	ellipsis             = "…"
	maxBadge             = 99
	dateLayout           = "Jan 2, 2006"
)

// RelativeTime renders how long ago t was, relative to now. Each unit
// applies from its lower bound inclusive, so exactly 60 minutes is "1h ago".
// Timestamps in the future read as "Just now".
func RelativeTime(t time.Time, now time.Time) string {
	d := now.Sub(t)
	mins := int(d / time.Minute)
	hours := mins / 60
	days := hours / 24

	switch {
	case mins < 1:
		return "Just now"
	case mins < 60:
		return strconv.Itoa(mins) + "m ago"
	case hours < 24:
		return strconv.Itoa(hours) + "h ago"
	case days < 7:
		return strconv.Itoa(days) + "d ago"
	default:
		return t.In(now.Location()).Format(dateLayout)
	}
}

// Truncate cuts s to limit runes followed by an ellipsis. Strings within the
// limit, including the empty string, come back unchanged. A limit below one
// uses DefaultTruncateLimit.
func Truncate(s string, limit int) string {
	if limit < 1 {
		limit = DefaultTruncateLimit
	}
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i] + ellipsis
		}
		n++
	}
	return s
}

// Badge is the unread counter text; empty when there is nothing unread.
func Badge(unread int) string {
	switch {
	case unread <= 0:
		return ""
	case unread > maxBadge:
		return strconv.Itoa(maxBadge) + "+"
	default:
		return strconv.Itoa(unread)
	}
}

// Title is the dropdown heading.
func Title(unread int) string {
	if unread > 0 {
		return "Notifications (" + strconv.Itoa(unread) + ")"
	}
	return "Notifications"
}

// Initial is the avatar letter for a sender.
func Initial(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if size == 0 || r == utf8.RuneError {
		return ""
	}
	return string(r)
}

// ShowMarkAll reports whether the mark-all action is offered.
func ShowMarkAll(unread int) bool {
	return unread > 0
}
