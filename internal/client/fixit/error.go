package fixit

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	go_json "github.com/goccy/go-json"

	"github.com/garrettladley/fixit/internal/xerrors"
)

type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Fields     map[string]string
	RequestID  string
}

func (e *APIError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("fixit api: %d %s (request %s)", e.StatusCode, e.Message, e.RequestID)
	}
	return fmt.Sprintf("fixit api: %d %s", e.StatusCode, e.Message)
}

func (e *APIError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// parseAPIError reads the dev server's error body, falling back to the
// {"error": ...} shape and then to the raw text.
func parseAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode, Message: resp.Status}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return apiErr
	}

	var errResp struct {
		xerrors.Response
		Error string `json:"error"`
	}
	if err := go_json.Unmarshal(body, &errResp); err != nil {
		if msg := strings.TrimSpace(string(body)); msg != "" {
			apiErr.Message = msg
		}
		return apiErr
	}

	apiErr.Code = errResp.Code
	apiErr.Fields = errResp.Fields
	apiErr.RequestID = errResp.RequestID
	switch {
	case errResp.Message != "":
		apiErr.Message = errResp.Message
	case errResp.Error != "":
		apiErr.Message = errResp.Error
	}
	return apiErr
}
