package paths

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestResolve(t *testing.T) {
	t.Parallel()

	home := func() (string, error) { return "/home/pat", nil }

	tests := []struct {
		name    string
		env     map[string]string
		home    func() (string, error)
		want    string
		wantErr bool
	}{
		{name: "default", home: home, want: filepath.Join("/home/pat", ".config", "fixit")},
		{name: "override", env: map[string]string{EnvHome: "/tmp/fixit-test/"}, home: home, want: "/tmp/fixit-test"},
		{name: "xdg", env: map[string]string{"XDG_CONFIG_HOME": "/xdg"}, home: home, want: filepath.Join("/xdg", "fixit")},
		{name: "relative xdg ignored", env: map[string]string{"XDG_CONFIG_HOME": "xdg"}, home: home, want: filepath.Join("/home/pat", ".config", "fixit")},
		{name: "no home", home: func() (string, error) { return "", errors.New("unset") }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := resolve(func(k string) string { return tt.env[k] }, tt.home)
			if (err != nil) != tt.wantErr {
				t.Fatalf("resolve() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("resolve() = %q, want %q", got, tt.want)
			}
		})
	}
}
