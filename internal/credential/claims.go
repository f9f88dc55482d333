package credential

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/garrettladley/fixit/internal/notification"
)

// Identity is who the bearer token belongs to.
type Identity struct {
	UserID notification.ID   `json:"userId"`
	Name   string            `json:"name,omitempty"`
	Role   notification.Role `json:"role,omitempty"`
	Expiry time.Time         `json:"-"`
}

// ParseIdentity reads identity claims from a JWT without verifying its
// signature. The server stays the authority; this only drives local
// presentation decisions.
func ParseIdentity(token string) (Identity, error) {
	claims := jwtlib.MapClaims{}
	if _, _, err := jwtlib.NewParser().ParseUnverified(token, claims); err != nil {
		return Identity{}, fmt.Errorf("parsing token: %w", err)
	}

	var id Identity
	for _, key := range []string{"user_id", "userId", "id"} {
		if v, ok := claimString(claims[key]); ok {
			id.UserID = notification.ID(v)
			break
		}
	}
	if id.UserID == "" {
		if sub, err := claims.GetSubject(); err == nil && sub != "" {
			id.UserID = notification.ID(sub)
		}
	}

	id.Role = claimRole(claims)
	if name, ok := claimString(claims["name"]); ok {
		id.Name = name
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		id.Expiry = exp.Time
	}
	return id, nil
}

// Expired reports whether the token carries an expiry that has passed.
func (i Identity) Expired(now time.Time) bool {
	return !i.Expiry.IsZero() && !now.Before(i.Expiry)
}

func claimRole(claims jwtlib.MapClaims) notification.Role {
	if v, ok := claimString(claims["role"]); ok {
		return normalizeRole(v)
	}
	if roles, ok := claims["roles"].([]any); ok && len(roles) > 0 {
		if v, ok := claimString(roles[0]); ok {
			return normalizeRole(v)
		}
	}
	return ""
}

func normalizeRole(v string) notification.Role {
	v = strings.ToUpper(strings.TrimSpace(v))
	return notification.Role(strings.TrimPrefix(v, "ROLE_"))
}

func claimString(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, x != ""
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case int64:
		return strconv.FormatInt(x, 10), true
	default:
		return "", false
	}
}
