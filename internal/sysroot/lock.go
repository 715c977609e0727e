package sysroot

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// sentinelName is the empty file inside each triple directory that the
// advisory lock is taken on.
const sentinelName = ".sentinel"

// Mode selects shared or exclusive lock acquisition.
type Mode int

const (
	Read Mode = iota
	Write
)

func (m Mode) String() string {
	if m == Write {
		return "read-write"
	}

	return "read-only"
}

// Lock is a held advisory lock on one triple's sysroot directory. The
// lock is tied to the open file descriptor, so the operating system
// drops it if the process dies while holding it.
type Lock struct {
	f *os.File
}

// Release drops the lock. Safe to call more than once.
func (l *Lock) Release() error {
	if l.f == nil {
		return nil
	}

	err := unix.Flock(int(l.f.Fd()), unix.LOCK_UN)
	cerr := l.f.Close()
	l.f = nil

	if err != nil {
		return err
	}

	return cerr
}

// LockRead takes a shared lock on triple's sysroot directory.
// Concurrent readers are allowed; a writer excludes them all.
func (h *Home) LockRead(triple string) (*Lock, error) {
	return h.lock(triple, Read)
}

// LockWrite takes an exclusive lock on triple's sysroot directory.
func (h *Home) LockWrite(triple string) (*Lock, error) {
	return h.lock(triple, Write)
}

// lock creates the triple directory and its sentinel if absent, then
// blocks until the flock is granted. Locks on distinct triples use
// distinct sentinels and never contend.
func (h *Home) lock(triple string, mode Mode) (*Lock, error) {
	dir := h.triplePath(triple)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("couldn't lock %s's sysroot as %s: %w", triple, mode, err)
	}

	f, err := os.OpenFile(filepath.Join(dir, sentinelName), os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("couldn't lock %s's sysroot as %s: %w", triple, mode, err)
	}

	how := unix.LOCK_SH
	if mode == Write {
		how = unix.LOCK_EX
	}

	if err := unix.Flock(int(f.Fd()), how); err != nil {
		f.Close()
		return nil, fmt.Errorf("couldn't lock %s's sysroot as %s: %w", triple, mode, err)
	}

	return &Lock{f: f}, nil
}
