package catalogs

import (
	"cmp"
	"strings"
)

// windowsReleases lists version name prefixes in release order.
var windowsReleases = []string{
	"Windows 95",
	"Windows 98",
	"Windows Me",
	"Windows NT",
	"Windows 2000",
	"Windows XP",
	"Windows 2003",
	"Windows Vista",
	"Windows 2008",
	"Windows 7",
	"Windows 2008 R2",
	"Windows 8",
	"Windows 2012",
	"Windows 8.1",
	"Windows 2012 R2",
	"Windows 10",
	"Windows 2016",
	"Windows 2019",
	"Windows 2022",
	"Windows 11",
	"Windows 2025",
}

// releaseRank returns the position of the longest release prefix of
// version, or len(windowsReleases) for unknown versions.
func releaseRank(version string) int {
	normalized := strings.Replace(version, "Windows Server ", "Windows ", 1)
	rank, length := len(windowsReleases), 0
	for i, prefix := range windowsReleases {
		if len(prefix) <= length || !strings.HasPrefix(normalized, prefix) {
			continue
		}
		rest := normalized[len(prefix):]
		if rest != "" && rest[0] != ' ' && rest[0] != '(' {
			continue
		}
		rank, length = i, len(prefix)
	}
	return rank
}

// CompareWindowsVersions orders version names by Windows release, then
// lexically.
func CompareWindowsVersions(a, b string) int {
	if c := cmp.Compare(releaseRank(a), releaseRank(b)); c != 0 {
		return c
	}
	return cmp.Compare(a, b)
}
