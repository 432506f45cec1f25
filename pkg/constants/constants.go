// Package constants provides shared constants used throughout winshl.
// This includes registry locations, well-known system binaries, resource
// identifiers, file permissions and definition store headers.
package constants

// Registry locations scanned for shell namespace objects
const (
	// ClassesRootPath is the machine-wide class registration root
	ClassesRootPath = `HKEY_LOCAL_MACHINE\Software\Classes`

	// CLSIDPath is the class-identifier root holding shell folder registrations
	CLSIDPath = ClassesRootPath + `\CLSID`

	// ControlPanelNameSpacePath lists the class identifiers of control panel items
	ControlPanelNameSpacePath = `HKEY_LOCAL_MACHINE\Software\Microsoft\Windows\CurrentVersion\Explorer\ControlPanel\NameSpace`

	// FolderDescriptionsPath lists known folder descriptions
	FolderDescriptionsPath = `HKEY_LOCAL_MACHINE\Software\Microsoft\Windows\CurrentVersion\Explorer\FolderDescriptions`

	// CurrentVersionPath holds the SystemRoot value of NT-family installations
	CurrentVersionPath = `HKEY_LOCAL_MACHINE\Software\Microsoft\Windows NT\CurrentVersion`

	// ShellFolderSubkey marks a class registration as a shell folder
	ShellFolderSubkey = "ShellFolder"

	// LocalizedStringValue holds an auxiliary indirect display string
	LocalizedStringValue = "LocalizedString"

	// ApplicationNameValue names a control panel item
	ApplicationNameValue = "System.ApplicationName"

	// SystemRootValue is the value name of the system root under CurrentVersionPath
	SystemRootValue = "SystemRoot"

	// SoftwareHiveMount is the key the root of the SOFTWARE hive is mounted at
	SoftwareHiveMount = `HKEY_LOCAL_MACHINE\Software`

	// SoftwareHivePath is the SOFTWARE hive of an installation
	SoftwareHivePath = `%SystemRoot%\System32\config\SOFTWARE`
)

// KernelCandidates are the binaries tried, in order, to determine the
// Windows version: NT family, 9x family, then Me.
var KernelCandidates = []string{
	`%SystemRoot%\System32\ntoskrnl.exe`,
	`%SystemRoot%\System32\kernel32.dll`,
	`%SystemRoot%\System\kernel32.dll`,
}

// WindowsDirectoryNames are the directory names searched for the Windows
// directory of a mounted volume.
var WindowsDirectoryNames = []string{"Windows", "WINNT", "WIN98", "WIN95", "WINME"}

// Name resolution defaults
const (
	// DefaultASCIICodepage is the single-byte fallback for undecodable UTF-16 names
	DefaultASCIICodepage = "cp1252"

	// DefaultPreferredLanguage is the string table language tried first (en-US)
	DefaultPreferredLanguage = 0x0409

	// DefaultSystemDirectory prefixes module references without a directory
	DefaultSystemDirectory = `%SystemRoot%\System32`

	// StringTableBlockSize is the number of string ids stored per block
	StringTableBlockSize = 16
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Definition store headers
const (
	ShellFolderHeader      = "# winshl-kb shellfolder definitions"
	KnownFolderHeader      = "# winshl-kb knownfolder definitions"
	ControlPanelItemHeader = "# winshl-kb controlpanel item definitions"
)

// Path constants
const (
	// DefaultConfigFile is the optional user configuration file name in $HOME
	DefaultConfigFile = ".winshl.yaml"

	// EnvPrefix prefixes environment variables read by the CLI
	EnvPrefix = "WINSHL"
)
