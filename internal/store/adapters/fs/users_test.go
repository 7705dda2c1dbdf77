package fs

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/datagate/internal/domain/repository"
)

func newRepo(t *testing.T, tables ...string) (repository.UserRepository, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.json")
	return NewUserRepo(path, func(context.Context) []string { return tables }), path
}

func TestEnsureAdmin_CreatesOnce(t *testing.T) {
	ctx := context.Background()
	repo, path := newRepo(t)

	created, err := repo.EnsureAdmin(ctx, "hash", []string{"rawc_data.rawc_table"})
	require.NoError(t, err)
	require.True(t, created)

	created, err = repo.EnsureAdmin(ctx, "other", nil)
	require.NoError(t, err)
	require.False(t, created)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.JSONEq(t, `{"admin":{"password":"hash","role":"admin",
		"data_access":{"tables":["rawc_data.rawc_table"],"row_filters":{}}}}`, string(b))
}

func TestCreate_DuplicateAndRoles(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t)

	u, err := repo.Create(ctx, repository.CreateUserInput{
		Username: "ops", PasswordHash: "h", Role: repository.RoleAdmin,
		Tables: []string{"d.a", "d.b"},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"d.a", "d.b"}, u.DataAccess.Tables)

	u, err = repo.Create(ctx, repository.CreateUserInput{
		Username: "bob", PasswordHash: "h", Role: repository.RoleUser,
		Tables: []string{"d.a"},
	})
	require.NoError(t, err)
	require.Empty(t, u.DataAccess.Tables)

	_, err = repo.Create(ctx, repository.CreateUserInput{Username: "bob", PasswordHash: "x", Role: repository.RoleUser})
	require.ErrorIs(t, err, repository.ErrConflict)

	_, err = repo.Create(ctx, repository.CreateUserInput{Username: "eve", PasswordHash: "x", Role: "root"})
	require.ErrorIs(t, err, repository.ErrInvalidInput)

	_, err = repo.Create(ctx, repository.CreateUserInput{Username: "", PasswordHash: "x", Role: repository.RoleUser})
	require.ErrorIs(t, err, repository.ErrInvalidInput)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	repo, path := newRepo(t)
	_, err := repo.EnsureAdmin(ctx, "h", nil)
	require.NoError(t, err)
	_, err = repo.Create(ctx, repository.CreateUserInput{Username: "bob", PasswordHash: "h", Role: repository.RoleUser})
	require.NoError(t, err)

	require.ErrorIs(t, repo.Delete(ctx, "admin"), repository.ErrReservedUser)
	require.ErrorIs(t, repo.Delete(ctx, "ghost"), repository.ErrNotFound)
	require.NoError(t, repo.Delete(ctx, "bob"))

	// reload desde disco con un repo nuevo
	reloaded := NewUserRepo(path, nil)
	_, err = reloaded.Get(ctx, "bob")
	require.ErrorIs(t, err, repository.ErrNotFound)
	_, err = reloaded.Get(ctx, "admin")
	require.NoError(t, err)
}

func TestUpdateAccess(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t)
	_, err := repo.Create(ctx, repository.CreateUserInput{Username: "bob", PasswordHash: "h", Role: repository.RoleUser})
	require.NoError(t, err)

	_, err = repo.UpdateAccess(ctx, "bob", repository.DataAccess{
		Tables:     []string{"rawc_data.t1"},
		RowFilters: map[string]string{"rawc_data.t2": "age > 30"},
	})
	require.ErrorIs(t, err, repository.ErrFilterWithoutTable)

	u, err := repo.UpdateAccess(ctx, "bob", repository.DataAccess{
		Tables:     []string{"rawc_data.t2", "rawc_data.t1"},
		RowFilters: map[string]string{"rawc_data.t1": "age > 30", "rawc_data.t2": "  "},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"rawc_data.t2", "rawc_data.t1"}, u.DataAccess.Tables)
	require.Equal(t, map[string]string{"rawc_data.t1": "age > 30"}, u.DataAccess.RowFilters)

	_, err = repo.UpdateAccess(ctx, "ghost", repository.DataAccess{})
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestLoad_NormalizesMissingDataAccess(t *testing.T) {
	ctx := context.Background()
	repo, path := newRepo(t, "d.x", "d.y")
	legacy := `{"root":{"password":"a","role":"admin"},"bob":{"password":"b","role":"user"}}`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o600))

	root, err := repo.Get(ctx, "root")
	require.NoError(t, err)
	require.Equal(t, []string{"d.x", "d.y"}, root.DataAccess.Tables)
	require.NotNil(t, root.DataAccess.RowFilters)

	bob, err := repo.Get(ctx, "bob")
	require.NoError(t, err)
	require.Empty(t, bob.DataAccess.Tables)
	require.NotNil(t, bob.DataAccess.RowFilters)
}

func TestSaveReload_IdenticalMapping(t *testing.T) {
	ctx := context.Background()
	repo, path := newRepo(t)
	_, err := repo.EnsureAdmin(ctx, "h0", []string{"d.a"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, repository.CreateUserInput{Username: "bob", PasswordHash: "h1", Role: repository.RoleUser})
	require.NoError(t, err)
	_, err = repo.UpdateAccess(ctx, "bob", repository.DataAccess{
		Tables: []string{"d.a"}, RowFilters: map[string]string{"d.a": "region = 'EU'"},
	})
	require.NoError(t, err)

	first, err := os.ReadFile(path)
	require.NoError(t, err)

	before, err := repo.List(ctx)
	require.NoError(t, err)
	after, err := NewUserRepo(path, nil).List(ctx)
	require.NoError(t, err)
	require.Equal(t, before, after)

	// una mutación que no cambia nada produce el mismo documento
	_, err = repo.UpdateAccess(ctx, "bob", after[1].DataAccess)
	require.NoError(t, err)
	second, err := os.ReadFile(path)
	require.NoError(t, err)

	var a, b map[string]any
	require.NoError(t, json.Unmarshal(first, &a))
	require.NoError(t, json.Unmarshal(second, &b))
	require.Equal(t, a, b)
}
