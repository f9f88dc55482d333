package github

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLatestRelease(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		status   int
		body     string
		expected *Release
		wantErr  bool
	}{
		{
			name:     "ok",
			status:   http.StatusOK,
			body:     `{"tag_name":"v1.2.0","html_url":"https://github.com/garrettladley/fixit/releases/v1.2.0"}`,
			expected: &Release{TagName: "v1.2.0", HTMLURL: "https://github.com/garrettladley/fixit/releases/v1.2.0"},
		},
		{name: "not found", status: http.StatusNotFound, body: `{}`, wantErr: true},
		{name: "missing tag", status: http.StatusOK, body: `{}`, wantErr: true},
		{name: "garbage", status: http.StatusOK, body: `{`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/repos/garrettladley/fixit/releases/latest" {
					t.Errorf("unexpected path %q", r.URL.Path)
				}
				if got := r.Header.Get("Accept"); got != acceptHeader {
					t.Errorf("Accept = %q", got)
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			t.Cleanup(srv.Close)

			c := NewClient(WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
			got, err := c.LatestRelease(t.Context(), "garrettladley", "fixit")
			if (err != nil) != tt.wantErr {
				t.Fatalf("LatestRelease() error = %v, wantErr %v", err, tt.wantErr)
			}
			if diff := cmp.Diff(tt.expected, got); diff != "" {
				t.Errorf("release mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
