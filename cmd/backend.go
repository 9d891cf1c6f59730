package cmd

import (
	"fmt"

	"github.com/thomascherickal/june/internal/dummy"
	"github.com/thomascherickal/june/internal/june"
	"github.com/thomascherickal/june/internal/june/config"
	"github.com/thomascherickal/june/internal/ollama"
)

// newBackend creates a new backend instance based on the configuration
func newBackend(cfg *config.Config) (june.Backend, error) {
	switch cfg.Backend {
	case ollama.BackendName:
		backend := ollama.NewBackend(cfg)
		backend.SetDebug(verbose)
		return backend, nil
	case dummy.BackendName:
		return dummy.NewBackend(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported backend: %s", cfg.Backend)
	}
}
