package testsupport

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
)

// DashboardCall records one request received by a FakeDashboard.
type DashboardCall struct {
	Method      string
	Path        string
	APIKey      string
	ContentType string
}

// FakeDashboardOptions seeds the responses of a FakeDashboard. Zero status
// fields mean 200; an empty Hostname means the fake's own host, so shard calls
// come back to the same server.
type FakeDashboardOptions struct {
	Organizations       string
	OrganizationsStatus int
	Hostname            string
	SNMPStatus          int
	Devices             string
	DevicesStatus       int
	RebootStatus        map[string]int
}

// FakeDashboard serves the Dashboard endpoints used by merakireboot from an
// httptest server. Directory and shard share the same listener.
type FakeDashboard struct {
	Server *httptest.Server

	opts  FakeDashboardOptions
	host  string
	mu    sync.Mutex
	calls []DashboardCall
}

// NewFakeDashboard starts a fake Dashboard and registers cleanup.
func NewFakeDashboard(t testing.TB, opts FakeDashboardOptions) *FakeDashboard {
	t.Helper()

	fake := &FakeDashboard{opts: opts}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v0/organizations", func(w http.ResponseWriter, r *http.Request) {
		fake.record(r)
		fake.writeJSON(w, fake.opts.OrganizationsStatus, fake.opts.Organizations, "[]")
	})
	mux.HandleFunc("GET /api/v0/organizations/{orgID}/snmp", func(w http.ResponseWriter, r *http.Request) {
		fake.record(r)
		hostname := fake.opts.Hostname
		if hostname == "" {
			hostname = fake.host
		}
		fake.writeJSON(w, fake.opts.SNMPStatus, `{"v2cEnabled":false,"v3Enabled":false,"hostname":"`+hostname+`","port":16100}`, "")
	})
	mux.HandleFunc("GET /api/v0/networks/{networkID}/devices", func(w http.ResponseWriter, r *http.Request) {
		fake.record(r)
		fake.writeJSON(w, fake.opts.DevicesStatus, fake.opts.Devices, "[]")
	})
	mux.HandleFunc("POST /api/v0/networks/{networkID}/devices/{serial}/reboot", func(w http.ResponseWriter, r *http.Request) {
		fake.record(r)
		status := http.StatusOK
		if code, ok := fake.opts.RebootStatus[r.PathValue("serial")]; ok {
			status = code
		}
		fake.writeJSON(w, status, `{"success":true}`, "")
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fake.record(r)
		http.NotFound(w, r)
	})

	fake.Server = httptest.NewServer(mux)
	parsed, err := url.Parse(fake.Server.URL)
	if err != nil {
		t.Fatalf("parse fake dashboard url: %v", err)
	}
	fake.host = parsed.Host
	t.Cleanup(fake.Server.Close)
	return fake
}

// BaseURL returns the directory API root of the fake.
func (f *FakeDashboard) BaseURL() string {
	return f.Server.URL + "/api/v0"
}

// Host returns the host:port the fake reports as its shard.
func (f *FakeDashboard) Host() string {
	return f.host
}

// Calls returns a copy of every request received so far, in order.
func (f *FakeDashboard) Calls() []DashboardCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]DashboardCall, len(f.calls))
	copy(out, f.calls)
	return out
}

// RebootPaths returns the request paths of reboot calls, in order.
func (f *FakeDashboard) RebootPaths() []string {
	var paths []string
	for _, call := range f.Calls() {
		if call.Method == http.MethodPost {
			paths = append(paths, call.Path)
		}
	}
	return paths
}

func (f *FakeDashboard) record(r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, DashboardCall{
		Method:      r.Method,
		Path:        r.URL.Path,
		APIKey:      r.Header.Get("X-Cisco-Meraki-API-Key"),
		ContentType: r.Header.Get("Content-Type"),
	})
}

func (f *FakeDashboard) writeJSON(w http.ResponseWriter, status int, body, fallback string) {
	if status == 0 {
		status = http.StatusOK
	}
	if body == "" {
		body = fallback
	}
	if status >= http.StatusMultipleChoices {
		body = `{"errors":["fake dashboard error"]}`
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
