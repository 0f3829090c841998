package migrate

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"curator/internal/services"
)

// freeSpaceMargin keeps a cushion beyond the planned bytes so a migration
// never fills the destination volume to the last byte.
const freeSpaceMargin = 64 << 20

// preflight proves the library root is usable before any file moves: the
// directory exists, it accepts writes, and the volume has room for the whole
// batch. A failed preflight aborts the run with nothing copied.
func preflight(libraryDir string, neededBytes int64) error {
	if err := os.MkdirAll(libraryDir, 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "migrate", "preflight", "create library root", err)
	}

	probe, err := os.CreateTemp(libraryDir, ".curator-probe-*")
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "migrate", "preflight", "library root is not writable", err)
	}
	probePath := probe.Name()
	_ = probe.Close()
	_ = os.Remove(probePath)

	var stat unix.Statfs_t
	if err := unix.Statfs(libraryDir, &stat); err != nil {
		return services.Wrap(services.ErrTransient, "migrate", "preflight", "stat destination filesystem", err)
	}
	free := int64(stat.Bavail) * int64(stat.Bsize)
	if free < neededBytes+freeSpaceMargin {
		return services.Wrap(services.ErrValidation, "migrate", "preflight",
			fmt.Sprintf("destination has %d bytes free, batch needs %d", free, neededBytes+freeSpaceMargin), nil)
	}
	return nil
}

// lockPath is where the migration run lock lives. It sits next to the
// catalog database, not in the library, so a missing library cannot block
// the lock itself.
func lockPath(dbDir string) string {
	return filepath.Join(dbDir, "migrate.lock")
}
