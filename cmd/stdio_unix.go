//go:build unix

package cmd

import (
	"os"

	"golang.org/x/sys/unix"
)

// redirectStdIO points the process's stdout and stderr descriptors at path
// so output from every goroutine, including panic traces, lands in the
// file. Long-running watch sessions started from init scripts use it.
func redirectStdIO(path string) error {
	if path == "" {
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	for _, std := range []*os.File{os.Stdout, os.Stderr} {
		if err := unix.Dup2(int(f.Fd()), int(std.Fd())); err != nil {
			return err
		}
	}
	return nil
}
