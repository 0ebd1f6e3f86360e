package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enatega_storefront/internal/model"
)

func openTestStorage(t *testing.T, dir string) *Storage {
	t.Helper()
	s, err := OpenStorage(dir)
	require.NoError(t, err)
	return s
}

func TestStorage_ItemRoundTrip(t *testing.T) {
	s := openTestStorage(t, "")
	defer s.Close()

	_, found, err := s.GetItem("missing")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.SetItem("k", "v"))
	v, found, err := s.GetItem("k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v", v)

	require.NoError(t, s.RemoveItem("k"))
	require.NoError(t, s.RemoveItem("k"))
	_, found, err = s.GetItem("k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStorage_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	s := openTestStorage(t, dir)
	_, err := SelectLanguage(s, "zh")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s = openTestStorage(t, dir)
	defer s.Close()
	lang, err := SelectedLanguage(s)
	require.NoError(t, err)
	assert.Equal(t, "zh", lang.Code)
}

func TestSelectedLanguage_Defaults(t *testing.T) {
	s := openTestStorage(t, "")
	defer s.Close()

	lang, err := SelectedLanguage(s)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultLanguageCode, lang.Code)

	require.NoError(t, s.SetItem(model.LanguageStorageKey, "tlh"))
	lang, err = SelectedLanguage(s)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultLanguageCode, lang.Code)
}

func TestSelectLanguage_Unsupported(t *testing.T) {
	s := openTestStorage(t, "")
	defer s.Close()

	_, err := SelectLanguage(s, "xx")
	assert.ErrorIs(t, err, model.ErrUnsupportedLanguage)
}
