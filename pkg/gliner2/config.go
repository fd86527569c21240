package gliner2

import (
	"fmt"
	"strings"
	"time"
)

type Provider int

const (
	// ProviderLocal is a self-hosted GLiNER2 service.
	ProviderLocal Provider = iota
	// ProviderFastino is the hosted Fastino API, which requires an API key.
	ProviderFastino
)

// ParseProvider maps a provider name to its constant.
func ParseProvider(s string) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "local", "gliner2":
		return ProviderLocal, nil
	case "fastino":
		return ProviderFastino, nil
	default:
		return 0, fmt.Errorf("unsupported provider: %s", s)
	}
}

type LocalConfig struct {
	Endpoint string        `json:"endpoint"`
	Timeout  time.Duration `json:"timeout"`
}

type FastinoConfig struct {
	Endpoint string        `json:"endpoint"`
	APIKey   string        `json:"api_key"`
	Timeout  time.Duration `json:"timeout"`
}

type Config struct {
	Provider Provider       `json:"provider"`
	Local    *LocalConfig   `json:"local,omitempty"`
	Fastino  *FastinoConfig `json:"fastino,omitempty"`
}
