// Package preflight provides readiness checks for the Dashboard API and the
// local paths merakireboot writes to.
//
// The CLI "merakireboot status" command runs them to show whether a reboot
// run would get past its setup. Checks for disabled features are skipped.
package preflight
