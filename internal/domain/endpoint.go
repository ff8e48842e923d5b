package domain

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

type Endpoint struct {
	Protocol string
	Host     string
	Port     int
	Path     string
}

func (e Endpoint) Validate() error {
	switch e.Protocol {
	case "ws", "wss":
	default:
		return fmt.Errorf("unsupported server protocol %q", e.Protocol)
	}
	if strings.TrimSpace(e.Host) == "" {
		return fmt.Errorf("server host is required")
	}
	if e.Port < 1 || e.Port > 65535 {
		return fmt.Errorf("server port %d out of range", e.Port)
	}

	return nil
}

func (e Endpoint) URL() string {
	path := e.Path
	if path == "" {
		path = "/"
	}

	u := url.URL{
		Scheme: e.Protocol,
		Host:   net.JoinHostPort(e.Host, strconv.Itoa(e.Port)),
		Path:   path,
	}
	return u.String()
}

// ParseEndpoint accepts ws://host:port[/path] URLs.
func ParseEndpoint(raw string) (Endpoint, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Endpoint{}, fmt.Errorf("parse server url: %w", err)
	}

	port, err := strconv.Atoi(u.Port())
	if err != nil {
		return Endpoint{}, fmt.Errorf("parse server port %q: %w", u.Port(), err)
	}

	endpoint := Endpoint{
		Protocol: u.Scheme,
		Host:     u.Hostname(),
		Port:     port,
		Path:     u.Path,
	}
	if err := endpoint.Validate(); err != nil {
		return Endpoint{}, err
	}

	return endpoint, nil
}
