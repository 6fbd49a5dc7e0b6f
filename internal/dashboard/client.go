package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"merakireboot/internal/config"
	"merakireboot/internal/logging"
	"merakireboot/internal/services"
)

// APIKeyHeader carries the credential on every Dashboard request.
const APIKeyHeader = "X-Cisco-Meraki-API-Key"

const component = "dashboard"

// HTTPDoer describes the HTTP client used by the Dashboard client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// API defines the Dashboard operations used by the reboot runner.
type API interface {
	ResolveOrganization(ctx context.Context, name string) (Organization, error)
	ResolveShard(ctx context.Context, orgID ID) (string, error)
	ListDevices(ctx context.Context, shard, networkID string) ([]Device, error)
	RebootDevice(ctx context.Context, shard, networkID, serial string) (int, error)
}

// Client provides access to the Dashboard API.
type Client struct {
	apiKey     string
	baseURL    string
	scheme     string
	pathPrefix string
	userAgent  string
	httpClient HTTPDoer
	logger     *slog.Logger
}

var _ API = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client HTTPDoer) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = strings.TrimSpace(userAgent)
	}
}

// WithLogger attaches a logger for request-level debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logging.NewComponentLogger(logger, component)
		}
	}
}

// New creates a Dashboard client. baseURL is the directory host including the
// API version path, e.g. https://dashboard.meraki.com/api/v0.
func New(apiKey, baseURL string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("dashboard api key required")
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("dashboard base url required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse dashboard base url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("dashboard base url %q must include scheme and host", baseURL)
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		scheme:     parsed.Scheme,
		pathPrefix: strings.TrimRight(parsed.EscapedPath(), "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// NewFromConfig builds a client from the [api] config section.
func NewFromConfig(cfg *config.Config, apiKey string, logger *slog.Logger) (*Client, error) {
	if cfg == nil {
		defaults := config.Default()
		cfg = &defaults
	}
	return New(apiKey, cfg.API.BaseURL,
		WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout()}),
		WithUserAgent(cfg.API.UserAgent),
		WithLogger(logger),
	)
}

// ShardURL returns the API root on the given shard host, reusing the base URL's
// scheme and version path.
func (c *Client) ShardURL(shard string) string {
	return c.scheme + "://" + strings.TrimRight(strings.TrimSpace(shard), "/") + c.pathPrefix
}

// ListOrganizations returns the organization directory visible to the API key.
// Only the first page is returned; the directory is not paginated further.
func (c *Client) ListOrganizations(ctx context.Context) ([]Organization, error) {
	var orgs []Organization
	if err := c.getJSON(ctx, "list organizations", c.baseURL+"/organizations", &orgs); err != nil {
		return nil, err
	}
	return orgs, nil
}

// FindOrganization returns the first organization whose name equals name
// exactly. Comparison is case-sensitive.
func FindOrganization(orgs []Organization, name string) (Organization, bool) {
	for _, org := range orgs {
		if org.Name == name {
			return org, true
		}
	}
	return Organization{}, false
}

// ResolveOrganization maps an organization display name to its record.
func (c *Client) ResolveOrganization(ctx context.Context, name string) (Organization, error) {
	orgs, err := c.ListOrganizations(ctx)
	if err != nil {
		return Organization{}, services.Wrap(services.ErrOrganizationNotFound, component, "resolve organization", fmt.Sprintf("name %q", name), err)
	}
	org, ok := FindOrganization(orgs, name)
	if !ok {
		return Organization{}, services.Wrap(services.ErrOrganizationNotFound, component, "resolve organization",
			fmt.Sprintf("no organization named %q among %d", name, len(orgs)), nil)
	}
	c.logger.Debug("organization resolved", "org_id", org.ID.String(), "org_name", org.Name)
	return org, nil
}

// ResolveShard returns the hostname of the shard serving the organization.
func (c *Client) ResolveShard(ctx context.Context, orgID ID) (string, error) {
	var settings SNMPSettings
	endpoint := c.baseURL + "/organizations/" + url.PathEscape(orgID.String()) + "/snmp"
	if err := c.getJSON(ctx, "get organization snmp", endpoint, &settings); err != nil {
		return "", services.Wrap(services.ErrEndpointNotFound, component, "resolve shard", "org "+orgID.String(), err)
	}
	host := strings.TrimSpace(settings.Hostname)
	if host == "" {
		return "", services.Wrap(services.ErrEndpointNotFound, component, "resolve shard", "org "+orgID.String()+" has no hostname", nil)
	}
	c.logger.Debug("shard resolved", "org_id", orgID.String(), "shard", host)
	return host, nil
}

// ListDevices returns the devices of a network exactly as the shard reports
// them.
func (c *Client) ListDevices(ctx context.Context, shard, networkID string) ([]Device, error) {
	var devices []Device
	endpoint := c.ShardURL(shard) + "/networks/" + url.PathEscape(networkID) + "/devices"
	if err := c.getJSON(ctx, "list devices", endpoint, &devices); err != nil {
		return nil, services.Wrap(services.ErrDeviceListFailed, component, "list devices", "network "+networkID, err)
	}
	c.logger.Debug("devices listed", logging.FieldNetworkID, networkID, "devices", len(devices))
	return devices, nil
}

// RebootDevice asks the shard to reboot one device and returns the response
// status code. The error is non-nil only when no response was received.
func (c *Client) RebootDevice(ctx context.Context, shard, networkID, serial string) (int, error) {
	endpoint := c.ShardURL(shard) + "/networks/" + url.PathEscape(networkID) + "/devices/" + url.PathEscape(serial) + "/reboot"
	resp, latency, err := c.do(ctx, http.MethodPost, endpoint)
	if err != nil {
		return 0, services.Wrap(services.ErrTransport, component, "reboot device", fmt.Sprintf("serial %s (latency=%v)", serial, latency), err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	c.logger.Debug("reboot requested", logging.FieldSerial, serial, "status", resp.StatusCode, "latency", latency)
	return resp.StatusCode, nil
}

func (c *Client) getJSON(ctx context.Context, operation, endpoint string, v any) error {
	resp, latency, err := c.do(ctx, http.MethodGet, endpoint)
	if err != nil {
		return fmt.Errorf("%s: execute request (latency=%v): %w", operation, latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &StatusError{Operation: operation, StatusCode: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%s: decode response: %w", operation, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, endpoint string) (*http.Response, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set(APIKeyHeader, c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	return resp, time.Since(start), err
}
