package admin

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/datagate/internal/access"
	"github.com/dropDatabas3/datagate/internal/catalog"
	"github.com/dropDatabas3/datagate/internal/domain/repository"
	dto "github.com/dropDatabas3/datagate/internal/http/dto/admin"
	"github.com/dropDatabas3/datagate/internal/security/password"
	"github.com/dropDatabas3/datagate/internal/store/adapters/fs"
	"github.com/dropDatabas3/datagate/internal/warehouse/warehousetest"
)

func newAdmin(t *testing.T, mode access.FilterMode, scheme password.Scheme) (AdminService, repository.UserRepository) {
	t.Helper()
	wh := &warehousetest.Fake{Tables: []string{"rawc_data.t1", "rawc_data.t2"}}
	cat := catalog.New(wh, "rawc_data", nil, 0)
	acc := access.NewService(cat, access.NewSource(wh, 0), mode)
	users := fs.NewUserRepo(filepath.Join(t.TempDir(), "users.json"), cat.Available)
	hash, err := password.Hash(password.SchemeSHA256, "admin123")
	require.NoError(t, err)
	_, err = users.EnsureAdmin(context.Background(), hash, nil)
	require.NoError(t, err)
	return NewServices(Deps{Users: users, Access: acc, PasswordScheme: scheme}).Users, users
}

func TestCreateUser_AdminGetsTableSnapshot(t *testing.T) {
	svc, users := newAdmin(t, access.FilterRaw, password.SchemeSHA256)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, dto.CreateUserRequest{Username: "ops", Password: "pw", Role: "admin"})
	require.NoError(t, err)
	_, err = svc.CreateUser(ctx, dto.CreateUserRequest{Username: "bob", Password: "pw"})
	require.NoError(t, err)

	ops, err := users.Get(ctx, "ops")
	require.NoError(t, err)
	require.Equal(t, []string{"rawc_data.t1", "rawc_data.t2"}, ops.DataAccess.Tables)

	bob, err := users.Get(ctx, "bob")
	require.NoError(t, err)
	require.Equal(t, repository.RoleUser, bob.Role)
	require.Empty(t, bob.DataAccess.Tables)
	require.True(t, password.Verify("pw", bob.PasswordHash))
}

func TestCreateUser_Validation(t *testing.T) {
	svc, _ := newAdmin(t, access.FilterRaw, password.SchemeSHA256)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, dto.CreateUserRequest{Username: "", Password: "pw"})
	require.ErrorIs(t, err, ErrMissingFields)
	_, err = svc.CreateUser(ctx, dto.CreateUserRequest{Username: "x", Password: "pw", Role: "root"})
	require.ErrorIs(t, err, repository.ErrInvalidInput)
	_, err = svc.CreateUser(ctx, dto.CreateUserRequest{Username: "admin", Password: "pw"})
	require.ErrorIs(t, err, repository.ErrConflict)
}

func TestCreateUser_Argon2idScheme(t *testing.T) {
	svc, users := newAdmin(t, access.FilterRaw, password.SchemeArgon2id)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, dto.CreateUserRequest{Username: "bob", Password: "pw"})
	require.NoError(t, err)
	bob, err := users.Get(ctx, "bob")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(bob.PasswordHash, "$argon2id$"))
	require.True(t, password.Verify("pw", bob.PasswordHash))
}

func TestUpdateAccess_StrictModeRejectsBadFilter(t *testing.T) {
	svc, _ := newAdmin(t, access.FilterStrict, password.SchemeSHA256)
	ctx := context.Background()
	_, err := svc.CreateUser(ctx, dto.CreateUserRequest{Username: "bob", Password: "pw"})
	require.NoError(t, err)

	_, err = svc.UpdateAccess(ctx, "bob", dto.UpdateAccessRequest{
		Tables:     []string{"rawc_data.t1"},
		RowFilters: map[string]string{"rawc_data.t1": "1=1; DROP TABLE x"},
	})
	require.ErrorIs(t, err, repository.ErrInvalidInput)

	out, err := svc.UpdateAccess(ctx, "bob", dto.UpdateAccessRequest{
		Tables:     []string{"rawc_data.t1", "rawc_data.gone"},
		RowFilters: map[string]string{"rawc_data.t1": "age > 30", "rawc_data.gone": " "},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"rawc_data.t1", "rawc_data.gone"}, out.Tables)
	require.Equal(t, []string{"rawc_data.t1"}, out.Selected)
	require.Equal(t, map[string]string{"rawc_data.t1": "age > 30"}, out.RowFilters)
	require.Equal(t, "strict", out.FilterMode)
}

func TestDeleteUser(t *testing.T) {
	svc, _ := newAdmin(t, access.FilterRaw, password.SchemeSHA256)
	ctx := context.Background()
	require.ErrorIs(t, svc.DeleteUser(ctx, "admin"), repository.ErrReservedUser)
	require.ErrorIs(t, svc.DeleteUser(ctx, "nobody"), repository.ErrNotFound)
}
