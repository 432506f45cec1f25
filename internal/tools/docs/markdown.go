package docs

import (
	"fmt"
	"html"
	"io"
	"slices"
	"strings"

	md "github.com/nao1215/markdown"

	"github.com/agentstation/winshl/pkg/catalogs"
)

// groupedReleases are listed once with their sub-versions in parentheses.
var groupedReleases = []string{"Windows 10", "Windows 11"}

// WriteShellFolder writes the Markdown page of one shell folder.
func WriteShellFolder(w io.Writer, def *catalogs.ShellFolder) error {
	builder := md.NewMarkdown(w)
	builder.H2(def.Identifier).LF()

	if seen := SeenOn(def.WindowsVersions); len(seen) > 0 {
		builder.PlainText("Seen on:").LF()
		builder.BulletList(seen...).LF()
	}

	builder.PlainText(propertiesTable(def))
	return builder.Build()
}

// SeenOn groups versions for display. Windows 10 and 11 builds are
// collapsed into one line per release; lines are ordered by release.
func SeenOn(versions catalogs.Versions) []string {
	groups := map[string][]string{}
	for _, v := range slices.Sorted(slices.Values(versions.Unique())) {
		release, sub := splitRelease(v)
		if _, ok := groups[release]; !ok {
			groups[release] = nil
		}
		if sub != "" {
			groups[release] = append(groups[release], sub)
		}
	}

	releases := make([]string, 0, len(groups))
	for release := range groups {
		releases = append(releases, release)
	}
	slices.SortFunc(releases, catalogs.CompareWindowsVersions)

	lines := make([]string, 0, len(releases))
	for _, release := range releases {
		if subs := groups[release]; len(subs) > 0 {
			lines = append(lines, fmt.Sprintf("%s (%s)", release, strings.Join(subs, ", ")))
			continue
		}
		lines = append(lines, release)
	}
	return lines
}

// splitRelease splits "Windows 10 (1909)" into "Windows 10" and "1909".
// Versions of other releases are returned whole.
func splitRelease(version string) (release, sub string) {
	for _, prefix := range groupedReleases {
		rest, ok := strings.CutPrefix(version, prefix)
		if !ok {
			continue
		}
		if inner, ok := strings.CutPrefix(rest, " ("); ok {
			return prefix, strings.TrimSuffix(inner, ")")
		}
		if strings.TrimSpace(rest) == "" {
			return prefix, ""
		}
	}
	return version, ""
}

func propertiesTable(def *catalogs.ShellFolder) string {
	var b strings.Builder
	b.WriteString("<table border=\"1\" class=\"docutils\">\n")
	b.WriteString("  <tbody>\n")
	row(&b, "<b>Class name:</b>", def.ClassName)
	row(&b, "<b>Name:</b>", def.Name)
	for i, name := range def.AlternateNames {
		label := "&nbsp;"
		if i == 0 {
			label = "<b>Alternate name(s):</b>"
		}
		row(&b, label, name)
	}
	b.WriteString("  </tbody>\n")
	b.WriteString("</table>\n")
	return b.String()
}

func row(b *strings.Builder, label, value string) {
	cell := "&nbsp;"
	if value != "" {
		cell = html.EscapeString(value)
	}
	fmt.Fprintf(b, "    <tr>\n      <td>%s</td>\n      <td>%s</td>\n    </tr>\n", label, cell)
}
