// Package aiclient builds the handle to the external Gemini service. No route
// calls the service yet; the handle only has to be constructible and closable.
package aiclient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// APIKeyEnv is the environment variable the key is read from at startup.
const APIKeyEnv = "GEMINI_API_KEY"

var ErrMissingAPIKey = errors.New("missing API key")

// ConfigurationError reports a required setting that is absent.
type ConfigurationError struct {
	Setting string
	Err     error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration %s: %v", e.Setting, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// Client is an opaque handle to the external service.
type Client struct {
	gen *genai.Client
}

// New returns a handle authenticated with apiKey. A blank key fails with
// *ConfigurationError before anything is dialed.
func New(ctx context.Context, apiKey string) (*Client, error) {
	if err := CheckKey(apiKey); err != nil {
		return nil, err
	}

	gen, err := genai.NewClient(ctx, option.WithAPIKey(strings.TrimSpace(apiKey)))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &Client{gen: gen}, nil
}

// CheckKey returns *ConfigurationError when apiKey is blank.
func CheckKey(apiKey string) error {
	if strings.TrimSpace(apiKey) == "" {
		return &ConfigurationError{Setting: APIKeyEnv, Err: ErrMissingAPIKey}
	}
	return nil
}

func (c *Client) Close() error {
	if c == nil || c.gen == nil {
		return nil
	}
	return c.gen.Close()
}

type buildFunc func(ctx context.Context, apiKey string) (*Client, error)

// Provider constructs the Client on first use and hands out the same handle
// (or the same error) afterwards. Safe for concurrent use.
type Provider struct {
	apiKey string
	build  buildFunc

	once   sync.Once
	client *Client
	err    error
}

func NewProvider(apiKey string) *Provider {
	return &Provider{apiKey: apiKey, build: New}
}

// Configured reports whether a key is present, without building anything.
func (p *Provider) Configured() bool {
	return CheckKey(p.apiKey) == nil
}

// Get builds the handle on first call. The handle outlives the caller, so it
// is built from ctx without its cancellation.
func (p *Provider) Get(ctx context.Context) (*Client, error) {
	p.once.Do(func() {
		p.client, p.err = p.build(context.WithoutCancel(ctx), p.apiKey)
	})
	return p.client, p.err
}

// Close releases the handle if one was built.
func (p *Provider) Close() error {
	p.once.Do(func() {
		p.err = errors.New("provider closed")
	})
	return p.client.Close()
}
