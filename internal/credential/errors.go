package credential

import "errors"

var (
	ErrNoToken      = errors.New("not logged in: run `fixit login`")
	ErrTokenExpired = errors.New("session expired: run `fixit login`")
)
