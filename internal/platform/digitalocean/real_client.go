package digitalocean

import (
	"context"
	"fmt"

	"github.com/digitalocean/godo"
	"golang.org/x/oauth2"

	"github.com/imamik/dodriver/internal/config"
)

// RealClient implements InfrastructureManager using the DigitalOcean API.
type RealClient struct {
	client    *godo.Client
	timeouts  *config.Timeouts
	baseURL   string
	userAgent string
}

// ClientOption configures a RealClient.
type ClientOption func(*RealClient)

// WithTimeouts sets custom transport settings for the client.
func WithTimeouts(t *config.Timeouts) ClientOption {
	return func(c *RealClient) {
		c.timeouts = t
	}
}

// WithBaseURL points the client at a different API endpoint.
func WithBaseURL(u string) ClientOption {
	return func(c *RealClient) {
		c.baseURL = u
	}
}

// WithUserAgent sets the User-Agent reported to the API.
func WithUserAgent(ua string) ClientOption {
	return func(c *RealClient) {
		c.userAgent = ua
	}
}

// WithGodoClient sets a custom godo client (useful for testing).
func WithGodoClient(gc *godo.Client) ClientOption {
	return func(c *RealClient) {
		c.client = gc
	}
}

// NewRealClient creates a new RealClient authenticated with token.
func NewRealClient(token string, opts ...ClientOption) (*RealClient, error) {
	c := &RealClient{
		timeouts: config.LoadTimeouts(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.client != nil {
		return c, nil
	}

	httpClient := oauth2.NewClient(context.Background(), oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	httpClient.Timeout = c.timeouts.Request

	clientOpts := []godo.ClientOpt{}
	if c.baseURL != "" {
		clientOpts = append(clientOpts, godo.SetBaseURL(c.baseURL))
	}
	if c.userAgent != "" {
		clientOpts = append(clientOpts, godo.SetUserAgent(c.userAgent))
	}

	gc, err := godo.New(httpClient, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create digitalocean client: %w", err)
	}
	c.client = gc
	return c, nil
}

// GodoClient returns the underlying godo.Client for calls the wrapper does not expose.
func (c *RealClient) GodoClient() *godo.Client {
	return c.client
}

// Ensure interface compliance
var _ InfrastructureManager = (*RealClient)(nil)
