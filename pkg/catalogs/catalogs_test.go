package catalogs

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/winshl/pkg/errors"
)

const myComputer = "20d04fe0-3aea-1069-a2d8-08002b30309d"

func TestVersions(t *testing.T) {
	var v Versions
	v.Add("Windows 10")
	v.Add("")
	v.Add("Windows XP")
	v.Add("Windows 10")

	assert.Equal(t, Versions{"Windows 10", "Windows XP", "Windows 10"}, v)
	assert.Equal(t, []string{"Windows 10", "Windows XP"}, v.Unique())
	assert.Equal(t, map[string]int{"Windows 10": 2, "Windows XP": 1}, v.Occurrences())
	assert.Equal(t, []string{"Windows XP", "Windows 10"}, v.Sorted())

	data, err := v.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `["Windows 10","Windows XP"]`, string(data))

	data, err = Versions(nil).MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestCompareWindowsVersions(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"Windows XP", "Windows 10", -1},
		{"Windows 8.1", "Windows 8", 1},
		{"Windows 2008 R2", "Windows 7", 1},
		{"Windows 2008", "Windows 7", -1},
		{"Windows Server 2019", "Windows 10", 1},
		{"Windows 10 (1809)", "Windows 10 (1703)", 1},
		{"Windows 11 (22H2)", "Windows 10 (22H2)", 1},
		{"Windows 10", "ReactOS", -1},
		{"Windows 10", "Windows 10", 0},
	}
	for _, tt := range tests {
		t.Run(tt.a+"_vs_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, CompareWindowsVersions(tt.a, tt.b))
		})
	}
}

func TestShellFolderAlternateNames(t *testing.T) {
	def := NewShellFolder(myComputer)
	def.Name = "My Computer"

	def.AddAlternateName("My Computer")
	def.AddAlternateName("")
	def.AddAlternateName("Computer")
	def.AddAlternateName("Computer")
	def.AddAlternateName("This PC")

	assert.Equal(t, []string{"Computer", "This PC"}, def.AlternateNames)
	assert.Equal(t, []string{"My Computer", "Computer", "This PC"}, def.Names())
}

func TestClonesAreIndependent(t *testing.T) {
	sf := NewShellFolder(myComputer)
	sf.AlternateNames = append(sf.AlternateNames, "Computer")
	sf.WindowsVersions.Add("Windows XP")
	sfc := sf.Clone()
	sfc.AlternateNames[0] = "changed"
	sfc.WindowsVersions.Add("Windows 10")
	assert.Equal(t, []string{"Computer"}, sf.AlternateNames)
	assert.Equal(t, Versions{"Windows XP"}, sf.WindowsVersions)

	kf := NewKnownFolder(myComputer)
	kf.CSIDL = append(kf.CSIDL, "CSIDL_DRIVES")
	kfc := kf.Clone()
	kfc.CSIDL[0] = "changed"
	assert.Equal(t, []string{"CSIDL_DRIVES"}, kf.CSIDL)

	cp := NewControlPanelItem(myComputer)
	cp.ModuleName = "Microsoft.System"
	cp.AddAlternateModuleName("Microsoft.System")
	cp.AddAlternateModuleName("System")
	cpc := cp.Clone()
	cpc.AlternateModuleNames[0] = "changed"
	assert.Equal(t, []string{"System"}, cp.AlternateModuleNames)
}

func TestNewDefinitionsDoNotShareLists(t *testing.T) {
	a := NewShellFolder(myComputer)
	b := NewShellFolder(myComputer)
	a.AddAlternateName("Computer")
	assert.Empty(t, b.AlternateNames)
}

func TestCollection(t *testing.T) {
	c := NewCollection[*ShellFolder]()

	_, ok := c.Get(myComputer)
	assert.False(t, ok)

	require.NoError(t, c.Set(NewShellFolder("645ff040-5081-101b-9f08-00aa002f954e")))
	require.NoError(t, c.Set(NewShellFolder(myComputer)))
	assert.True(t, c.Exists(myComputer))
	assert.Equal(t, 2, c.Len())

	list := c.List()
	require.Len(t, list, 2)
	assert.Equal(t, myComputer, list[0].Identifier)

	err := c.Set(NewShellFolder(""))
	assert.True(t, errors.IsValidationError(err))
	err = c.Set(nil)
	assert.True(t, errors.IsValidationError(err))
}

func TestCollectionConcurrentAccess(t *testing.T) {
	c := NewCollection[*KnownFolder]()
	ids := []string{
		"fdd39ad0-238f-46af-adb4-6c85480369c7",
		"374de290-123f-4565-9164-39c4925e467b",
		"33e28130-4e1e-4676-835a-98395c3bc3bb",
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NoError(t, c.Set(NewKnownFolder(id)))
		}()
		go func() {
			defer wg.Done()
			c.Get(id)
			c.List()
		}()
	}
	wg.Wait()

	assert.Equal(t, len(ids), c.Len())
}

func TestNewCatalog(t *testing.T) {
	c := New()
	assert.Zero(t, c.ShellFolders.Len())
	assert.Zero(t, c.KnownFolders.Len())
	assert.Zero(t, c.ControlPanelItems.Len())
}
