package formula

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/cellar/pkg/errors"
)

func TestRegistry_EmbeddedFormulas(t *testing.T) {
	r := NewRegistry(afero.NewMemMapFs())

	triqs, err := r.Lookup("triqs")
	require.NoError(t, err)
	assert.Equal(t, "triqs", triqs.Name)
	assert.True(t, triqs.HasStableSource())
	assert.True(t, triqs.HasHead())
	assert.True(t, triqs.HasOption(TestOption))
	assert.Contains(t, triqs.OptionNames(), "with-ipython")
	require.Len(t, triqs.PostInstall, 1)
	assert.Equal(t, []string{"bin/pytriqs", "bin/ipytriqs"}, triqs.PostInstall[0].Paths)

	plugin, err := r.Lookup("triqs_cthyb_matrix")
	require.NoError(t, err)
	assert.Equal(t, "triqs", plugin.Dependencies[1].Name)
	assert.Equal(t, BindingCellar, plugin.Dependencies[1].Binding)
	assert.Equal(t, "1.4", plugin.Dependencies[1].Version)

	_, err = r.Lookup("nope")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrFormulaNotFound))
}

func TestRegistry_UserDirsShadowEmbedded(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/a/triqs.yaml", []byte("name: triqs\nurl: file:///src/triqs.tar.gz\n"), 0644))
	require.NoError(t, afero.WriteFile(fs, "/b/triqs.toml", []byte("name = \"triqs\"\nurl = \"other\"\n"), 0644))
	require.NoError(t, afero.WriteFile(fs, "/b/extra.toml", []byte("name = \"extra\"\nurl = \"x\"\n"), 0644))
	require.NoError(t, afero.WriteFile(fs, "/b/README.md", []byte("notes"), 0644))

	r := NewRegistry(fs, "/a", "/b", "/missing")

	f, err := r.Lookup("triqs")
	require.NoError(t, err)
	assert.Equal(t, "file:///src/triqs.tar.gz", f.URL)
	assert.Equal(t, "/a/triqs.yaml", f.Path)

	sources, err := r.List()
	require.NoError(t, err)
	assert.Equal(t, []Source{
		{Name: "extra", Path: "/b/extra.toml"},
		{Name: "triqs", Path: "/a/triqs.yaml"},
		{Name: "triqs_cthyb_matrix"},
	}, sources)
}

func TestRegistry_LookupByPath(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/work/local.toml", []byte("name = \"local\"\nurl = \"x\"\n"), 0644))

	r := NewRegistry(fs)
	f, err := r.Lookup("/work/local.toml")
	require.NoError(t, err)
	assert.Equal(t, "local", f.Name)
}
