package engine

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// acquireLock takes the project-wide exclusive lock. Unlike a blocking lock
// it fails fast with ConcurrentOperationError so callers can report and
// retry instead of hanging behind another operation.
func acquireLock(lockFile string) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(lockFile), 0o755); err != nil {
		return nil, fmt.Errorf("prepare lock dir: %w", err)
	}

	f, err := os.OpenFile(lockFile, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, ConcurrentOperationError{LockFile: lockFile}
		}
		return nil, fmt.Errorf("acquire lock: %w", err)
	}

	_, _ = f.WriteString(strconv.Itoa(os.Getpid()) + "\n")
	_ = f.Close()

	return func() { _ = os.Remove(lockFile) }, nil
}
