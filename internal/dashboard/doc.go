// Package dashboard provides the minimal Meraki Dashboard API client used by
// the reboot runner.
//
// It covers exactly four calls: the organization directory, the per-organization
// SNMP record that names the organization's shard host, the device inventory of
// a network, and the per-device reboot action. Directory calls go to the
// configured base URL; network calls go to the shard, reusing the base URL's
// scheme and path prefix. Every request carries the X-Cisco-Meraki-API-Key
// header.
//
// Failures are reported as errors tagged with the services markers
// (ErrOrganizationNotFound, ErrEndpointNotFound, ErrDeviceListFailed) so callers
// never have to recognise sentinel records. Options allow tests to supply a
// custom HTTP client.
package dashboard
