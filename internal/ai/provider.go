// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package ai provides a unified interface to the external text-completion
// providers (OpenAI, Claude, Mistral) the content generator's primary
// strategy calls. Each provider implements the Provider interface, and
// the Registry selects the active one by name.
package ai

import (
	"context"
	"fmt"
	"sync"
)

// Provider is a single text-completion backend. Each provider handles its
// own HTTP communication and response parsing.
type Provider interface {
	// Complete sends a prompt and returns the generated text.
	// systemPrompt sets the model's behaviour; userPrompt is the request.
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	// Name returns the provider identifier (e.g., "openai").
	Name() string
}

// ProviderConfig holds the credentials and settings for a single provider.
type ProviderConfig struct {
	APIKey    string
	Model     string
	BaseURL   string
	MaxTokens int // 0 means the provider default
}

// Registry manages the configured providers and selects the active one.
// All methods are safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	active    string
}

// NewRegistry creates a registry and initialises providers for every
// config that has a non-empty API key. Providers without keys are
// silently skipped.
func NewRegistry(active string, configs map[string]ProviderConfig) *Registry {
	r := &Registry{
		providers: make(map[string]Provider),
		active:    active,
	}

	for name, cfg := range configs {
		if cfg.APIKey == "" {
			continue
		}
		switch name {
		case "openai":
			r.providers[name] = newOpenAI(cfg)
		case "claude":
			r.providers[name] = newClaude(cfg)
		case "mistral":
			r.providers[name] = newMistral(cfg)
		}
	}

	// No explicit choice (or the chosen provider has no key): fall back
	// to the first configured one, in a fixed preference order.
	if _, ok := r.providers[r.active]; !ok {
		for _, name := range []string{"openai", "claude", "mistral"} {
			if _, ok := r.providers[name]; ok {
				r.active = name
				break
			}
		}
	}

	return r
}

// Complete calls the active provider's Complete method.
func (r *Registry) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	p, err := r.Active()
	if err != nil {
		return "", err
	}
	return p.Complete(ctx, systemPrompt, userPrompt)
}

// Active returns the currently active provider.
func (r *Registry) Active() (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[r.active]
	if !ok {
		return nil, fmt.Errorf("ai: no provider configured for %q", r.active)
	}
	return p, nil
}

// SetActive switches the active provider at runtime. Returns an error if
// the named provider has no API key configured.
func (r *Registry) SetActive(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.providers[name]; !ok {
		return fmt.Errorf("ai: provider %q is not available (no API key?)", name)
	}
	r.active = name
	return nil
}

// ActiveName returns the name of the currently active provider.
func (r *Registry) ActiveName() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.active
}

// Available returns the names of all providers that have valid API keys.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var names []string
	for name := range r.providers {
		names = append(names, name)
	}
	return names
}

// HasAny reports whether at least one provider is configured. When false
// the content generator runs on the fallback strategy alone.
func (r *Registry) HasAny() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.providers) > 0
}

// Register adds or replaces a provider in the registry. Used to inject
// custom providers (e.g. fakes in tests).
func (r *Registry) Register(name string, p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[name] = p
}
