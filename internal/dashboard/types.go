package dashboard

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ID is a Dashboard identifier. The API has served organization IDs both as
// JSON strings and as bare numbers, so both decode into the same string form.
type ID string

// UnmarshalJSON accepts quoted and numeric identifiers.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decode id %s: %w", data, err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// Organization is a single record from the organization directory.
type Organization struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

// SNMPSettings is the subset of the organization SNMP record used to locate the
// shard host.
type SNMPSettings struct {
	Hostname   string `json:"hostname"`
	V2cEnabled bool   `json:"v2cEnabled"`
	V3Enabled  bool   `json:"v3Enabled"`
	Port       int    `json:"port"`
}

// Device is a single record from a network's device inventory.
type Device struct {
	Serial    string `json:"serial"`
	Model     string `json:"model"`
	Name      string `json:"name,omitempty"`
	MAC       string `json:"mac,omitempty"`
	LanIP     string `json:"lanIp,omitempty"`
	NetworkID string `json:"networkId,omitempty"`
}

// StatusError reports a Dashboard response with an unexpected status code.
type StatusError struct {
	Operation  string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned %d", e.Operation, e.StatusCode)
}
