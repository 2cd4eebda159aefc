package watch

import (
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/azuline/rose-go/internal/roseerr"
)

// WritePIDFile claims path for the current process, refusing if another
// live process already holds it. This is the "daemonization glue tracks a
// PID file" requirement of §5, used by the CLI's cache watch/unwatch verbs
// to prevent two watchers running against the same cache concurrently.
func WritePIDFile(path string) error {
	if existing, ok := readLivePID(path); ok {
		return roseerr.New(roseerr.DaemonAlreadyRunning, "watcher already running with pid %d", existing)
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644)
}

// RemovePIDFile releases path, ignoring a missing file.
func RemovePIDFile(path string) error {
	err := os.Remove(path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// readLivePID reports the pid recorded in path, if the file exists and
// that process is still alive.
func readLivePID(path string) (int, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return 0, false
	}
	// On Unix, FindProcess always succeeds; signal 0 checks liveness
	// without actually sending a signal.
	if err := proc.Signal(syscall.Signal(0)); err != nil {
		return 0, false
	}
	return pid, true
}
