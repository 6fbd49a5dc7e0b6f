package dashboard_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"

	"merakireboot/internal/dashboard"
	"merakireboot/internal/services"
	"merakireboot/internal/testsupport"
)

func newClient(t *testing.T, fake *testsupport.FakeDashboard) *dashboard.Client {
	t.Helper()
	client, err := dashboard.New("key-123", fake.BaseURL())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return client
}

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := dashboard.New("  ", "https://dashboard.meraki.com/api/v0"); err == nil {
		t.Fatal("expected error when api key missing")
	}
}

func TestNewRequiresSchemeAndHost(t *testing.T) {
	if _, err := dashboard.New("key", "dashboard.meraki.com/api/v0"); err == nil {
		t.Fatal("expected error when base url lacks a scheme")
	}
}

func TestShardURLReusesSchemeAndPath(t *testing.T) {
	client, err := dashboard.New("key", "https://dashboard.meraki.com/api/v0/")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if got := client.ShardURL("n1.meraki.com"); got != "https://n1.meraki.com/api/v0" {
		t.Fatalf("unexpected shard url %q", got)
	}
}

func TestResolveOrganizationFirstMatchWins(t *testing.T) {
	fake := testsupport.NewFakeDashboard(t, testsupport.FakeDashboardOptions{
		Organizations: `[{"id":"7","name":"acme"},{"id":"1","name":"Acme"},{"id":"2","name":"Acme"}]`,
	})
	client := newClient(t, fake)

	org, err := client.ResolveOrganization(context.Background(), "Acme")
	if err != nil {
		t.Fatalf("ResolveOrganization returned error: %v", err)
	}
	if org.ID != "1" {
		t.Fatalf("expected first exact match id 1, got %q", org.ID)
	}

	calls := fake.Calls()
	want := []testsupport.DashboardCall{
		{Method: http.MethodGet, Path: "/api/v0/organizations", APIKey: "key-123", ContentType: "application/json"},
	}
	if diff := cmp.Diff(want, calls); diff != "" {
		t.Fatalf("unexpected calls (-want +got):\n%s", diff)
	}
}

func TestResolveOrganizationNumericID(t *testing.T) {
	fake := testsupport.NewFakeDashboard(t, testsupport.FakeDashboardOptions{
		Organizations: `[{"id":549236,"name":"Acme"}]`,
	})
	org, err := newClient(t, fake).ResolveOrganization(context.Background(), "Acme")
	if err != nil {
		t.Fatalf("ResolveOrganization returned error: %v", err)
	}
	if org.ID != "549236" {
		t.Fatalf("expected numeric id decoded as string, got %q", org.ID)
	}
}

func TestResolveOrganizationNotFound(t *testing.T) {
	tests := []struct {
		name string
		opts testsupport.FakeDashboardOptions
		org  string
	}{
		{"no match", testsupport.FakeDashboardOptions{Organizations: `[{"id":"1","name":"Acme"}]`}, "Globex"},
		{"case sensitive", testsupport.FakeDashboardOptions{Organizations: `[{"id":"1","name":"Acme"}]`}, "ACME"},
		{"http error", testsupport.FakeDashboardOptions{OrganizationsStatus: http.StatusUnauthorized}, "Acme"},
		{"bad body", testsupport.FakeDashboardOptions{Organizations: `{"not":"a list"}`}, "Acme"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := testsupport.NewFakeDashboard(t, tt.opts)
			_, err := newClient(t, fake).ResolveOrganization(context.Background(), tt.org)
			if !errors.Is(err, services.ErrOrganizationNotFound) {
				t.Fatalf("expected organization-not-found, got %v", err)
			}
			if services.ExitCode(err) != services.ExitAbort {
				t.Fatalf("expected abort exit code, got %d", services.ExitCode(err))
			}
		})
	}
}

func TestResolveOrganizationStatusErrorIsInspectable(t *testing.T) {
	fake := testsupport.NewFakeDashboard(t, testsupport.FakeDashboardOptions{OrganizationsStatus: http.StatusTooManyRequests})
	_, err := newClient(t, fake).ResolveOrganization(context.Background(), "Acme")
	var statusErr *dashboard.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError in chain, got %v", err)
	}
	if statusErr.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("unexpected status %d", statusErr.StatusCode)
	}
}

func TestFindOrganization(t *testing.T) {
	orgs := []dashboard.Organization{{ID: "1", Name: "Acme"}, {ID: "2", Name: "Acme"}}
	org, ok := dashboard.FindOrganization(orgs, "Acme")
	if !ok || org.ID != "1" {
		t.Fatalf("expected first match, got %+v %v", org, ok)
	}
	if _, ok := dashboard.FindOrganization(orgs, "acme"); ok {
		t.Fatal("expected case-sensitive miss")
	}
	if _, ok := dashboard.FindOrganization(nil, "Acme"); ok {
		t.Fatal("expected miss on empty directory")
	}
}

func TestResolveShard(t *testing.T) {
	fake := testsupport.NewFakeDashboard(t, testsupport.FakeDashboardOptions{Hostname: "n1.meraki.com"})
	host, err := newClient(t, fake).ResolveShard(context.Background(), "1")
	if err != nil {
		t.Fatalf("ResolveShard returned error: %v", err)
	}
	if host != "n1.meraki.com" {
		t.Fatalf("unexpected shard %q", host)
	}
	if calls := fake.Calls(); len(calls) != 1 || calls[0].Path != "/api/v0/organizations/1/snmp" {
		t.Fatalf("unexpected calls %+v", calls)
	}
}

func TestResolveShardFailure(t *testing.T) {
	fake := testsupport.NewFakeDashboard(t, testsupport.FakeDashboardOptions{SNMPStatus: http.StatusNotFound})
	_, err := newClient(t, fake).ResolveShard(context.Background(), "1")
	if !errors.Is(err, services.ErrEndpointNotFound) {
		t.Fatalf("expected endpoint-not-found, got %v", err)
	}
}

func TestListDevicesUsesShard(t *testing.T) {
	fake := testsupport.NewFakeDashboard(t, testsupport.FakeDashboardOptions{
		Devices: `[{"serial":"Q2AB-1111","model":"MR33","name":"lobby"},{"serial":"Q2AB-2222","model":"MS120"}]`,
	})
	devices, err := newClient(t, fake).ListDevices(context.Background(), fake.Host(), "N_1")
	if err != nil {
		t.Fatalf("ListDevices returned error: %v", err)
	}
	want := []dashboard.Device{
		{Serial: "Q2AB-1111", Model: "MR33", Name: "lobby"},
		{Serial: "Q2AB-2222", Model: "MS120"},
	}
	if diff := cmp.Diff(want, devices); diff != "" {
		t.Fatalf("unexpected devices (-want +got):\n%s", diff)
	}
	if calls := fake.Calls(); len(calls) != 1 || calls[0].Path != "/api/v0/networks/N_1/devices" || calls[0].ContentType != "application/json" {
		t.Fatalf("unexpected calls %+v", calls)
	}
}

func TestListDevicesFailure(t *testing.T) {
	fake := testsupport.NewFakeDashboard(t, testsupport.FakeDashboardOptions{DevicesStatus: http.StatusNotFound})
	devices, err := newClient(t, fake).ListDevices(context.Background(), fake.Host(), "N_missing")
	if !errors.Is(err, services.ErrDeviceListFailed) {
		t.Fatalf("expected device-list-failed, got %v", err)
	}
	if devices != nil {
		t.Fatalf("expected no devices on failure, got %+v", devices)
	}
}

func TestRebootDeviceReturnsStatus(t *testing.T) {
	fake := testsupport.NewFakeDashboard(t, testsupport.FakeDashboardOptions{
		RebootStatus: map[string]int{"Q2AB-2222": http.StatusBadRequest},
	})
	client := newClient(t, fake)

	status, err := client.RebootDevice(context.Background(), fake.Host(), "N_1", "Q2AB-1111")
	if err != nil || status != http.StatusOK {
		t.Fatalf("expected 200, got %d %v", status, err)
	}
	status, err = client.RebootDevice(context.Background(), fake.Host(), "N_1", "Q2AB-2222")
	if err != nil || status != http.StatusBadRequest {
		t.Fatalf("expected 400 without error, got %d %v", status, err)
	}

	want := []testsupport.DashboardCall{
		{Method: http.MethodPost, Path: "/api/v0/networks/N_1/devices/Q2AB-1111/reboot", APIKey: "key-123", ContentType: "application/json"},
		{Method: http.MethodPost, Path: "/api/v0/networks/N_1/devices/Q2AB-2222/reboot", APIKey: "key-123", ContentType: "application/json"},
	}
	if diff := cmp.Diff(want, fake.Calls()); diff != "" {
		t.Fatalf("unexpected reboot calls (-want +got):\n%s", diff)
	}
}

func TestRebootDeviceTransportError(t *testing.T) {
	fake := testsupport.NewFakeDashboard(t, testsupport.FakeDashboardOptions{})
	client := newClient(t, fake)
	fake.Server.Close()

	status, err := client.RebootDevice(context.Background(), fake.Host(), "N_1", "Q2AB-1111")
	if status != 0 {
		t.Fatalf("expected zero status, got %d", status)
	}
	if !errors.Is(err, services.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestIDUnmarshalNull(t *testing.T) {
	var id dashboard.ID
	if err := id.UnmarshalJSON([]byte("null")); err != nil || id != "" {
		t.Fatalf("expected empty id for null, got %q %v", id, err)
	}
	if err := id.UnmarshalJSON([]byte("{}")); err == nil {
		t.Fatal("expected error for object id")
	}
}
