package presenter

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/garrettladley/fixit/internal/notification"
)

type IntentKind int

const (
	IntentNone IntentKind = iota
	// IntentAdminChat asks the chat surface to open a conversation with an administrator.
	IntentAdminChat
	IntentProviderDashboard
	IntentAdminDashboard
	IntentDirectChat
	IntentAllNotifications
)

const (
	providerMessagesTab = 6
	adminMessagesTab    = 4
)

const (
	pathProviderDashboard = "/provider-dashboard"
	pathAdminDashboard    = "/admin-dashboard"
	pathChat              = "/chat/"
	pathNotifications     = "/notifications"
)

type Intent struct {
	Kind IntentKind
	// PeerID is the other side of the conversation for chat intents.
	PeerID notification.ID
	// Tab preselects a dashboard tab; zero means none.
	Tab int
}

// ResolveClickAction decides where a click on r leads. A notification sent
// by an administrator always opens the administrator conversation; anything
// else depends on the current user's role.
func ResolveClickAction(r notification.Record, currentRole notification.Role) Intent {
	if r.SenderRole == notification.RoleAdmin {
		return Intent{Kind: IntentAdminChat, PeerID: r.SenderID}
	}

	switch currentRole {
	case notification.RoleProvider:
		return Intent{Kind: IntentProviderDashboard, Tab: providerMessagesTab}
	case notification.RoleAdmin:
		return Intent{Kind: IntentAdminDashboard, Tab: adminMessagesTab}
	default:
		return Intent{Kind: IntentDirectChat, PeerID: r.SenderID}
	}
}

// ViewAll is the intent behind "View all notifications".
func ViewAll() Intent {
	return Intent{Kind: IntentAllNotifications}
}

// Path returns the web route for navigation intents and "" for signals.
func (i Intent) Path() string {
	switch i.Kind {
	case IntentProviderDashboard:
		return pathProviderDashboard
	case IntentAdminDashboard:
		return pathAdminDashboard
	case IntentDirectChat:
		return pathChat + url.PathEscape(i.PeerID.String())
	case IntentAllNotifications:
		return pathNotifications
	default:
		return ""
	}
}

// URL joins Path onto appURL, carrying Tab as the activeTab query parameter.
func (i Intent) URL(appURL string) string {
	path := i.Path()
	if path == "" {
		return ""
	}
	u := strings.TrimSuffix(appURL, "/") + path
	if i.Tab > 0 {
		u += "?" + url.Values{"activeTab": {strconv.Itoa(i.Tab)}}.Encode()
	}
	return u
}

func (i Intent) String() string {
	switch i.Kind {
	case IntentAdminChat:
		return "open admin chat with " + i.PeerID.String()
	case IntentProviderDashboard:
		return "provider dashboard (messages)"
	case IntentAdminDashboard:
		return "admin dashboard (messages)"
	case IntentDirectChat:
		return "chat with " + i.PeerID.String()
	case IntentAllNotifications:
		return "all notifications"
	default:
		return "none"
	}
}
