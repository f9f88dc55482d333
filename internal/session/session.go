package session

import (
	"time"

	"github.com/google/uuid"
)

const idLayout = "20060102-150405"

// NewID names one client run. It is sent as X-Fixit-Session-ID on every REST
// call so the dev server's request logs line up with the local log file.
func NewID() string {
	return newID(time.Now(), uuid.New())
}

func newID(now time.Time, u uuid.UUID) string {
	return now.UTC().Format(idLayout) + "-" + u.String()[:8]
}
