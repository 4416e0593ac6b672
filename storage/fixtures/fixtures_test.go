package fixtures

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/coursehub/core/user"
)

func TestDefault(t *testing.T) {
	f, err := Default()
	require.NoError(t, err)

	assert.NotEmpty(t, f.Users)
	assert.NotEmpty(t, f.Courses)
	assert.NotEmpty(t, f.Enrollments)
	assert.Equal(t, 0, f.FindUser("admin@coursehub.dev"))
	assert.Equal(t, -1, f.FindUser("nobody@coursehub.dev"))

	for _, u := range f.Users {
		assert.True(t, u.Role.IsValid(), u.Email)
	}
}

func TestLoad(t *testing.T) {
	f, err := Load("")
	require.NoError(t, err)
	assert.NotEmpty(t, f.Users)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"users": [], "unknown": 1}`), 0o600))
	_, err = Load(bad)
	assert.Error(t, err)
}

func TestFixtures_Save(t *testing.T) {
	f, err := Default()
	require.NoError(t, err)

	idx := f.FindUser("ken@coursehub.dev")
	require.NotEqual(t, -1, idx)
	require.NoError(t, f.Users[idx].SetPassword("N3w#Secret"))

	path := filepath.Join(t.TempDir(), "fixtures.json")
	require.NoError(t, f.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, f, loaded)

	ken := loaded.Users[idx]
	assert.Empty(t, ken.Password)
	usr, err := ken.Record()
	require.NoError(t, err)
	assert.NoError(t, usr.CheckPassword("N3w#Secret"))
	assert.Error(t, usr.CheckPassword("Welcome#2024"))
}

func TestUser_Record(t *testing.T) {
	u := User{User: user.User{ID: "u1", Email: "a@b.c"}, Password: "Welcome#2024"}
	usr, err := u.Record()
	require.NoError(t, err)
	assert.Equal(t, "u1", usr.ID)
	assert.NoError(t, usr.CheckPassword("Welcome#2024"))

	usr, err = User{User: user.User{ID: "u2"}}.Record()
	require.NoError(t, err)
	assert.Empty(t, usr.PasswordHash)
}
