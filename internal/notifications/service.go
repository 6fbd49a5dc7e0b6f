package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"merakireboot/internal/config"
)

const defaultUserAgent = "merakireboot/0.1.0"

// RunReport summarizes a finished reboot run for notification purposes.
type RunReport struct {
	Organization string
	NetworkID    string
	Devices      int
	Succeeded    int
	Failed       int
	Placeholder  bool
	Duration     time.Duration
}

// Service defines the notification surface exposed to the reboot runner.
type Service interface {
	NotifyRunCompleted(ctx context.Context, report RunReport) error
	NotifyRunFailed(ctx context.Context, organization, networkID string, err error) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := cfg.NotifyTimeout()
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	userAgent := strings.TrimSpace(cfg.API.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	return &ntfyService{
		endpoint:  topic,
		userAgent: userAgent,
		client:    &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint  string
	userAgent string
	client    *http.Client
}

func (n *ntfyService) NotifyRunCompleted(ctx context.Context, report RunReport) error {
	duration := report.Duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}

	target := networkLabel(report.Organization, report.NetworkID)
	data := payload{
		title: "merakireboot - Run Complete",
		message: fmt.Sprintf("Rebooted %d devices in %s: %d accepted in %s",
			report.Devices, target, report.Succeeded, duration),
		tags: []string{"merakireboot", "reboot", "completed"},
	}
	switch {
	case report.Placeholder:
		data.title = "merakireboot - Run Complete (device list unavailable)"
		data.message = fmt.Sprintf("Device list for %s could not be fetched; placeholder reboot sent", target)
		data.tags = []string{"merakireboot", "reboot", "warning"}
		data.priority = "high"
	case report.Failed > 0:
		data.title = "merakireboot - Run Complete (with errors)"
		data.message = fmt.Sprintf("Rebooted %d devices in %s: %d accepted, %d rejected in %s",
			report.Devices, target, report.Succeeded, report.Failed, duration)
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyRunFailed(ctx context.Context, organization, networkID string, err error) error {
	var builder strings.Builder
	builder.WriteString("Reboot run for ")
	builder.WriteString(networkLabel(organization, networkID))
	builder.WriteString(" aborted: ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "merakireboot - Run Failed",
		message:  builder.String(),
		tags:     []string{"merakireboot", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "merakireboot - Test",
		message:  "Notification system test",
		tags:     []string{"merakireboot", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", n.userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func networkLabel(organization, networkID string) string {
	organization = strings.TrimSpace(organization)
	networkID = strings.TrimSpace(networkID)
	if organization == "" {
		return "network " + networkID
	}
	return fmt.Sprintf("%s/%s", organization, networkID)
}

type noopService struct{}

func (noopService) NotifyRunCompleted(context.Context, RunReport) error          { return nil }
func (noopService) NotifyRunFailed(context.Context, string, string, error) error { return nil }
func (noopService) TestNotification(context.Context) error                       { return nil }
