package constants_test

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/agentstation/winshl/pkg/constants"
)

// Example shows the registry location of shell folder registrations.
func Example() {
	fmt.Println(constants.CLSIDPath)
	fmt.Println(constants.KernelCandidates[0])

	// Output:
	// HKEY_LOCAL_MACHINE\Software\Classes\CLSID
	// %SystemRoot%\System32\ntoskrnl.exe
}

// Example_permissions writes a definition store with standard permissions.
func Example_permissions() {
	dir, err := os.MkdirTemp("", "winshl")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	file := filepath.Join(dir, "shellfolders.yaml")
	if err := os.WriteFile(file, []byte(constants.ShellFolderHeader+"\n"), constants.FilePermissions); err != nil {
		panic(err)
	}

	fmt.Printf("Created file with %o permissions\n", constants.FilePermissions)
	// Output: Created file with 644 permissions
}
