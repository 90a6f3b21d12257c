package config

import (
	"io/ioutil"
	"os"
)

// renameio has no Windows support.
func writeFile(path string, buf []byte, mode os.FileMode) error {
	return ioutil.WriteFile(path, buf, mode)
}
