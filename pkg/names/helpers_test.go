package names_test

import (
	"os"

	"github.com/agentstation/winshl/pkg/volume"
)

func openHostFile(path string) (volume.File, error) {
	return os.Open(path)
}
