// Package httpclient provides the built-in HTTP client facet: a shared,
// configured resty client whose idle connections are released on disposal.
// Configuration keys: "http_base_url" and "http_timeout" (a duration string).
package httpclient

import (
	"context"
	"fmt"
	"time"

	"resty.dev/v3"

	"github.com/vk/facetgo/internal/contract"
	"github.com/vk/facetgo/internal/engine"
	"github.com/vk/facetgo/internal/facet"
	"github.com/vk/facetgo/internal/hook"
)

// Kind is the facet kind this package produces.
const Kind = "httpclient"

// Module implements the engine.Provider interface for this package.
type Module struct{}

// Register wires the httpclient contract and hook onto the container.
func (m *Module) Register(c *engine.Container) error {
	if !c.Contracts().Has(Kind) {
		err := c.Contracts().Register(&contract.Contract{
			Name:    Kind,
			Methods: []string{"get"},
		})
		if err != nil {
			return err
		}
	}
	c.Use(&hook.Hook{
		Kind:     Kind,
		Source:   "facets/httpclient",
		Contract: Kind,
		Fn: func(ctx context.Context, env *facet.Env) (facet.Facet, error) {
			return &Client{}, nil
		},
	})
	return nil
}

// Client is the HTTP client facet. The underlying resty client is created
// during Init so a rolled-back build never leaks connections.
type Client struct {
	client *resty.Client
}

func (c *Client) Kind() string { return Kind }

// Init creates and configures the resty client from the resolved config.
func (c *Client) Init(ctx context.Context, env *facet.Env) error {
	client := resty.New()
	if base, ok := env.Config["http_base_url"].(string); ok && base != "" {
		client.SetBaseURL(base)
	}
	if raw, ok := env.Config["http_timeout"].(string); ok && raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid http_timeout %q: %w", raw, err)
		}
		client.SetTimeout(timeout)
	}
	c.client = client
	return nil
}

// Dispose closes the client, releasing idle connections.
func (c *Client) Dispose(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

func (c *Client) Methods() map[string]any {
	return map[string]any{
		"get": c.Get,
	}
}

// Resty exposes the underlying client for request building beyond Get.
func (c *Client) Resty() *resty.Client { return c.client }

// Get performs a GET request and returns the response body as a string.
// Non-2xx statuses are returned as errors.
func (c *Client) Get(ctx context.Context, url string) (string, error) {
	res, err := c.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return "", err
	}
	if res.IsError() {
		return "", fmt.Errorf("GET %s: unexpected status %s", url, res.Status())
	}
	return res.String(), nil
}
