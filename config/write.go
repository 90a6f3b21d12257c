//go:build !windows
// +build !windows

package config

import (
	"os"

	"github.com/google/renameio"
)

// writeFile replaces path atomically, so readers never see a partly
// written settings file.
func writeFile(path string, buf []byte, mode os.FileMode) error {
	return renameio.WriteFile(path, buf, mode)
}
