package settings

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alambare/gitlab-project-dashboard/internal/apperrors"
	"github.com/alambare/gitlab-project-dashboard/internal/domain"
)

func openTestStore(t *testing.T, defBase, defToken string) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "settings.db"), defBase, defToken)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_DefaultsWhenUnset(t *testing.T) {
	s := openTestStore(t, "", "")
	assert.Equal(t, DefaultAPIBaseURL, s.APIBaseURL())
	assert.Equal(t, "", s.AccessToken())

	c, err := s.CurrentContainer()
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestStore_EnvDefaultsPrecedePublicInstance(t *testing.T) {
	s := openTestStore(t, "https://gitlab.example.com", "glpat-env")
	assert.Equal(t, "https://gitlab.example.com", s.APIBaseURL())
	assert.Equal(t, "glpat-env", s.AccessToken())
}

func TestStore_SavedValuesWinOverDefaults(t *testing.T) {
	s := openTestStore(t, "https://gitlab.example.com", "glpat-env")
	require.NoError(t, s.SetAPIBaseURL("https://self.hosted"))
	require.NoError(t, s.SetAccessToken("glpat-user"))

	assert.Equal(t, "https://self.hosted", s.APIBaseURL())
	assert.Equal(t, "glpat-user", s.AccessToken())
}

func TestStore_GetUnknownKey(t *testing.T) {
	s := openTestStore(t, "", "")
	_, err := s.Get("nope")
	assert.ErrorIs(t, err, apperrors.ErrSettingNotFound)
}

func TestStore_SetOverwrites(t *testing.T) {
	s := openTestStore(t, "", "")
	require.NoError(t, s.Set("k", "v1"))
	require.NoError(t, s.Set("k", "v2"))
	v, err := s.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v2", v)
}

func TestStore_CurrentContainerRoundTrip(t *testing.T) {
	s := openTestStore(t, "", "")
	want := domain.Container{FullPath: "grp/app", Name: "Group / App", Type: domain.ContainerGroup}
	require.NoError(t, s.SetCurrentContainer(want))

	got, err := s.CurrentContainer()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want, *got)
}
