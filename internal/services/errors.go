package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUsage                = errors.New("usage error")
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrEndpointNotFound     = errors.New("shard endpoint not found")
	ErrDeviceListFailed     = errors.New("device list failed")
	ErrBusy                 = errors.New("run in progress")
	ErrConfiguration        = errors.New("configuration error")
	ErrTransport            = errors.New("transport failure")
)

// Exit codes reported by the CLI.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitAbort   = 2
)

// Wrap builds an error message that includes component context while tagging it
// with the provided marker for later exit-code classification. The marker should
// be one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransport
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// ExitCode maps an error returned by a run to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrUsage),
		errors.Is(err, ErrOrganizationNotFound),
		errors.Is(err, ErrEndpointNotFound),
		errors.Is(err, ErrDeviceListFailed),
		errors.Is(err, ErrBusy):
		return ExitAbort
	default:
		return ExitFailure
	}
}

// UserMessage returns the operator-facing text for err, without the "@" prefix.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrOrganizationNotFound):
		return "ERROR: Fetching organization failed"
	case errors.Is(err, ErrEndpointNotFound):
		return "ERROR: Fetching Meraki cloud shard URL failed"
	case errors.Is(err, ErrDeviceListFailed):
		return "ERROR: Fetching device list failed"
	case errors.Is(err, ErrBusy):
		return "ERROR: Another reboot run holds the lock for this network"
	default:
		return "ERROR: " + err.Error()
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
