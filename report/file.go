package report

import (
	"io"
	"os"

	"github.com/google/renameio/v2"
)

// WriteFile atomically replaces name with whatever write produces. The old
// file is kept if write fails.
func WriteFile(name string, write func(io.Writer) error) error {
	pf, err := renameio.NewPendingFile(name, renameio.WithPermissions(0o644))
	if err != nil {
		return err
	}
	defer pf.Cleanup()

	if err := write(pf); err != nil {
		return err
	}
	return pf.CloseAtomicallyReplace()
}

// Exists reports whether a regular file exists at name.
func Exists(name string) bool {
	fi, err := os.Stat(name)
	return err == nil && fi.Mode().IsRegular()
}
