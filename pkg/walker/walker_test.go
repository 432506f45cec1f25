package walker_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/winshl/internal/testhelper"
	"github.com/agentstation/winshl/pkg/constants"
	"github.com/agentstation/winshl/pkg/logging"
	"github.com/agentstation/winshl/pkg/names"
	"github.com/agentstation/winshl/pkg/registry"
	"github.com/agentstation/winshl/pkg/walker"
)

const (
	myComputer  = "20d04fe0-3aea-1069-a2d8-08002b30309d"
	recycleBin  = "645ff040-5081-101b-9f08-00aa002f954e"
	network     = "f02c1a0d-be21-4350-88b0-7367fc96ef3c"
	documents   = "fdd39ad0-238f-46af-adb4-6c85480369c7"
	systemPanel = "bb06c0e4-d293-4f75-8a90-cb05b6477eee"
)

func newRegistry() *registry.Memory {
	reg := registry.NewMemory()
	clsid := reg.CreateKey(constants.CLSIDPath)

	k := clsid.CreateSubkey("{20D04FE0-3AEA-1069-A2D8-08002B30309D}")
	k.SetString("", `@%SystemRoot%\system32\shell32.dll,-9216`)
	k.SetString("LocalizedString", `@%SystemRoot%\system32\shell32.dll,-9216`)
	k.CreateSubkey("ShellFolder")

	k = clsid.CreateSubkey("{645FF040-5081-101B-9F08-00AA002F954E}")
	k.SetString("", "CLSID_RecycleBin")
	k.CreateSubkey("ShellFolder")

	// Registered class without a ShellFolder key.
	k = clsid.CreateSubkey("{00021400-0000-0000-c000-000000000046}")
	k.SetString("", "Desktop")

	k = clsid.CreateSubkey("NotAGuid")
	k.CreateSubkey("ShellFolder")

	k = clsid.CreateSubkey("{F02C1A0D-BE21-4350-88B0-7367FC96EF3C}")
	k.SetString("", `@%SystemRoot%\system32\netshell.dll,-1200`)
	k.CreateSubkey("ShellFolder")

	k = clsid.CreateSubkey("{BB06C0E4-D293-4F75-8A90-CB05B6477EEE}")
	k.SetString("", `@%SystemRoot%\System32\systemcpl.dll,-1`)
	k.SetString(constants.ApplicationNameValue, "Microsoft.System")

	panel := reg.CreateKey(constants.ControlPanelNameSpacePath)
	panel.CreateSubkey("{BB06C0E4-D293-4F75-8A90-CB05B6477EEE}")
	panel.CreateSubkey("{5224f545-a443-4859-ba23-7b5a95bdc8ef}")

	folder := reg.CreateKey(constants.FolderDescriptionsPath + `\{FDD39AD0-238F-46AF-ADB4-6C85480369C7}`)
	folder.SetString("Name", "Personal")
	folder.SetString("LocalizedName", `@%SystemRoot%\system32\shell32.dll,-21770`)
	folder.SetString("RelativePath", "Documents")

	return reg
}

func newWalker(t *testing.T) (*walker.Walker, *testhelper.Modules) {
	t.Helper()

	modules := testhelper.NewModules(map[string]testhelper.Module{
		`%SystemRoot%\System32\shell32.dll`: {
			Strings: map[int]string{9216: "My Computer", 21770: "Documents"},
		},
		`%SystemRoot%\System32\systemcpl.dll`: {
			Strings: map[int]string{1: "System"},
		},
	})
	resolver, err := names.NewResolver(modules)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resolver.Close() })

	return walker.New(newRegistry(), resolver), modules
}

func TestShellFolders(t *testing.T) {
	w, _ := newWalker(t)
	tl := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), tl.Logger)

	var got []walker.ShellFolderRecord
	for record := range w.ShellFolders(ctx) {
		got = append(got, record)
	}

	want := []walker.ShellFolderRecord{
		{
			Identifier:      myComputer,
			Name:            "My Computer",
			LocalizedString: `@%SystemRoot%\system32\shell32.dll,-9216`,
		},
		{Identifier: recycleBin, ClassName: "CLSID_RecycleBin"},
		{Identifier: network},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ShellFolders() mismatch (-want +got):\n%s", diff)
	}

	tl.AssertContains(t, "Unable to open resource module")
	tl.AssertContains(t, `"identifier":"`+network+`"`)
}

func TestShellFoldersIsRestartable(t *testing.T) {
	w, _ := newWalker(t)
	ctx := context.Background()

	count := func() int {
		n := 0
		for range w.ShellFolders(ctx) {
			n++
		}
		return n
	}
	assert.Equal(t, 3, count())
	assert.Equal(t, 3, count())

	for record := range w.ShellFolders(ctx) {
		assert.Equal(t, myComputer, record.Identifier)
		break
	}
}

func TestControlPanelItems(t *testing.T) {
	w, _ := newWalker(t)

	var got []walker.ControlPanelRecord
	for record := range w.ControlPanelItems(context.Background()) {
		got = append(got, record)
	}

	want := []walker.ControlPanelRecord{
		{Identifier: systemPanel, Name: "Microsoft.System", ModuleName: "System"},
		{Identifier: "5224f545-a443-4859-ba23-7b5a95bdc8ef"},
	}
	assert.Equal(t, want, got)
}

func TestKnownFolders(t *testing.T) {
	w, _ := newWalker(t)

	var got []walker.KnownFolderRecord
	for record := range w.KnownFolders(context.Background()) {
		got = append(got, record)
	}

	require.Len(t, got, 1)
	assert.Equal(t, walker.KnownFolderRecord{
		Identifier:  documents,
		Name:        "Personal",
		DisplayName: "Documents",
		DefaultPath: "Documents",
	}, got[0])
}

func TestWalkMissingRoots(t *testing.T) {
	resolver, err := names.NewResolver(nil)
	require.NoError(t, err)
	w := walker.New(registry.NewMemory(), resolver)
	ctx := context.Background()

	for range w.ShellFolders(ctx) {
		t.Fatal("expected no shell folders")
	}
	for range w.ControlPanelItems(ctx) {
		t.Fatal("expected no control panel items")
	}
	for range w.KnownFolders(ctx) {
		t.Fatal("expected no known folders")
	}
}
