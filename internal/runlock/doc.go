// Package runlock serializes reboot runs against the same network using a
// file lock in the state directory.
package runlock
