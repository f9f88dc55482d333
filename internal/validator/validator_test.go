package validator

import (
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type fields map[string]string

func (f fields) Validate() map[string]string { return f }

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    []Validator
		expected map[string]string
	}{
		{name: "nothing", input: nil},
		{name: "valid", input: []Validator{fields(nil), fields{}}},
		{
			name:     "merged",
			input:    []Validator{fields{"email": "required"}, fields(nil), fields{"password": "required"}},
			expected: map[string]string{"email": "required", "password": "required"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := Validate(tt.input...)
			if tt.expected == nil {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if err.StatusCode != http.StatusUnprocessableEntity {
				t.Errorf("status = %d, want 422", err.StatusCode)
			}
			if diff := cmp.Diff(tt.expected, err.Fields); diff != "" {
				t.Errorf("fields mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
