package runlock

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gofrs/flock"

	"merakireboot/internal/services"
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Lock is an exclusive advisory lock held for the duration of one reboot run.
type Lock struct {
	path  string
	flock *flock.Flock
}

// PathFor returns the lock file used for networkID under stateDir. IDs that
// need sanitizing get a hash suffix so that "N/1" and "N_1" lock separately.
func PathFor(stateDir, networkID string) string {
	id := strings.TrimSpace(networkID)
	name := unsafeChars.ReplaceAllString(id, "_")
	switch {
	case name == "":
		name = "default"
	case name != id:
		sum := sha256.Sum256([]byte(id))
		name += "-" + hex.EncodeToString(sum[:4])
	}
	return filepath.Join(stateDir, name+".lock")
}

// Acquire takes the lock for networkID without blocking. A lock held by
// another process yields an error marked services.ErrBusy.
func Acquire(stateDir, networkID string) (*Lock, error) {
	if strings.TrimSpace(stateDir) == "" {
		return nil, errors.New("state directory required for run lock")
	}
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	path := PathFor(stateDir, networkID)
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrBusy, "runlock", "acquire", "lock "+path+" is held", nil)
	}
	return &Lock{path: path, flock: fl}, nil
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Release unlocks the file. It is safe to call on a nil lock.
func (l *Lock) Release() error {
	if l == nil || l.flock == nil {
		return nil
	}
	return l.flock.Unlock()
}
