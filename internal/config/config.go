package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/caarlos0/env/v11"
)

const (
	DefaultAPIURL = "https://fixitnow-backend-u4fv.onrender.com"
	websocketPath = "/ws/websocket"
)

type Config struct {
	APIURL string `env:"FIXIT_API_URL" envDefault:"https://fixitnow-backend-u4fv.onrender.com"`
	WSURL  string `env:"FIXIT_WS_URL"`
	AppURL string `env:"FIXIT_APP_URL"`
	Token  string `env:"FIXIT_TOKEN"`
}

func Read() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, err
	}
	cfg.APIURL = strings.TrimSuffix(cfg.APIURL, "/")

	if cfg.WSURL == "" {
		ws, err := WebsocketURL(cfg.APIURL)
		if err != nil {
			return Config{}, err
		}
		cfg.WSURL = ws
	}
	if cfg.AppURL == "" {
		cfg.AppURL = cfg.APIURL
	}
	return cfg, nil
}

// WebsocketURL derives the raw STOMP websocket endpoint from an API base URL.
func WebsocketURL(apiURL string) (string, error) {
	u, err := url.Parse(apiURL)
	if err != nil {
		return "", fmt.Errorf("parse api url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported api url scheme %q", u.Scheme)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + websocketPath
	return u.String(), nil
}
