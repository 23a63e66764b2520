package agent

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// LockConfig configures the run lock.
type LockConfig struct {
	// Path is the lock file location.
	Path string

	// StaleAfter is the age past which a lock whose owner cannot be
	// confirmed alive is reclaimed. Default: 30 minutes, roughly twice
	// the longest expected run.
	StaleAfter time.Duration
}

// Lock is the at-most-one-run marker. The file holds the owning process id
// and the acquisition time, so a later invocation can tell a live run from
// the residue of a crashed one.
type Lock struct {
	config LockConfig
	owned  bool
}

// NewLock creates a lock at the given path.
func NewLock(config LockConfig) *Lock {
	if config.StaleAfter <= 0 {
		config.StaleAfter = 30 * time.Minute
	}
	return &Lock{config: config}
}

// Acquire takes the lock or reports why it cannot.
//
// Returns ErrAlreadyRunning when the current holder is still alive;
// overlapping runs are refused, not queued. A lock whose owner is dead, or
// whose contents are unreadable and older than the staleness window, is
// reclaimed.
func (l *Lock) Acquire() error {
	if err := os.MkdirAll(filepath.Dir(l.config.Path), 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrLockUnavailable, err)
	}

	for attempt := 0; attempt < 2; attempt++ {
		err := l.tryCreate()
		if err == nil {
			l.owned = true
			return nil
		}
		if !os.IsExist(err) {
			return fmt.Errorf("%w: %v", ErrLockUnavailable, err)
		}

		reclaimable, rerr := l.holderGone()
		if rerr != nil {
			return rerr
		}
		if !reclaimable {
			return ErrAlreadyRunning
		}
		if err := os.Remove(l.config.Path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("%w: %v", ErrLockUnavailable, err)
		}
	}

	return ErrAlreadyRunning
}

// Release drops the lock if this instance owns it. Safe to call more than
// once; release on signal must not leave a permanent lock behind.
func (l *Lock) Release() error {
	if !l.owned {
		return nil
	}
	l.owned = false
	if err := os.Remove(l.config.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: %v", ErrLockUnavailable, err)
	}
	return nil
}

func (l *Lock) tryCreate() error {
	f, err := os.OpenFile(l.config.Path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = fmt.Fprintf(f, "%d %d\n", os.Getpid(), time.Now().Unix())
	return err
}

// holderGone decides whether the existing lock can be reclaimed.
func (l *Lock) holderGone() (bool, error) {
	data, err := os.ReadFile(l.config.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, fmt.Errorf("%w: %v", ErrLockUnavailable, err)
	}

	pid, _, parseErr := parseLock(string(data))
	if parseErr != nil {
		// Unreadable contents: trust only age.
		info, err := os.Stat(l.config.Path)
		if err != nil {
			return os.IsNotExist(err), nil
		}
		return time.Since(info.ModTime()) > l.config.StaleAfter, nil
	}

	if processAlive(pid) {
		return false, nil
	}
	// Owner is gone; the lock is residue of a crashed run.
	return true, nil
}

func parseLock(content string) (pid int, acquired time.Time, err error) {
	fields := strings.Fields(content)
	if len(fields) < 2 {
		return 0, time.Time{}, fmt.Errorf("malformed lock: %q", content)
	}
	pid, err = strconv.Atoi(fields[0])
	if err != nil {
		return 0, time.Time{}, err
	}
	unix, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return 0, time.Time{}, err
	}
	return pid, time.Unix(unix, 0), nil
}

// processAlive reports whether a process with the given pid exists.
func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	if err == nil {
		return true
	}
	// EPERM means the process exists but belongs to someone else.
	return errors.Is(err, syscall.EPERM)
}
