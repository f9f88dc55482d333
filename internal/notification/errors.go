package notification

import "errors"

var (
	ErrMissingCredential = errors.New("missing credential")
	ErrTransport         = errors.New("transport failure")
	ErrFetch             = errors.New("fetch failure")
	ErrPersist           = errors.New("persist failure")
	ErrMalformedPayload  = errors.New("malformed payload")
)
