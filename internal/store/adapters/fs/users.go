// Package fs implementa repository.UserRepository sobre un archivo JSON.
//
// Formato (mapping username -> record):
//
//	{"admin": {"password": "<sha256 hex>", "role": "admin",
//	           "data_access": {"tables": ["rawc_data.rawc_table"], "row_filters": {}}}}
//
// Cada mutación hace read-modify-write bajo un mutex y escribe con
// temp file + rename, así un lector nunca ve un archivo a medio escribir.
package fs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/dropDatabas3/datagate/internal/domain/repository"
	"github.com/dropDatabas3/datagate/internal/util/atomicwrite"
)

// TablesFunc devuelve la lista actual de tablas. Se usa para normalizar admins
// sin data_access.
type TablesFunc func(ctx context.Context) []string

// userRepo implementa repository.UserRepository usando FileSystem.
type userRepo struct {
	path        string
	adminTables TablesFunc
	mu          sync.Mutex
}

// record es la forma en disco de un usuario. DataAccess es puntero para
// distinguir "ausente" de "vacío" al normalizar.
type record struct {
	Password   string                 `json:"password"`
	Role       repository.Role        `json:"role"`
	DataAccess *repository.DataAccess `json:"data_access,omitempty"`
}

// NewUserRepo crea el repositorio sobre path. adminTables puede ser nil.
func NewUserRepo(path string, adminTables TablesFunc) repository.UserRepository {
	return &userRepo{path: path, adminTables: adminTables}
}

func (r *userRepo) tables(ctx context.Context) []string {
	if r.adminTables == nil {
		return []string{}
	}
	if t := r.adminTables(ctx); t != nil {
		return t
	}
	return []string{}
}

// readAll lee el archivo completo y normaliza. Un archivo ausente es un mapping vacío.
// Debe llamarse con r.mu tomado.
func (r *userRepo) readAll(ctx context.Context) (map[string]repository.User, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]repository.User{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read users file: %w", err)
	}

	var raw map[string]record
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse users file: %w", err)
	}

	users := make(map[string]repository.User, len(raw))
	var adminTables []string
	for name, rec := range raw {
		u := repository.User{
			Username:     name,
			PasswordHash: rec.Password,
			Role:         rec.Role,
		}
		switch {
		case rec.DataAccess != nil:
			u.DataAccess = rec.DataAccess.Normalize()
		case rec.Role == repository.RoleAdmin:
			if adminTables == nil {
				adminTables = r.tables(ctx)
			}
			u.DataAccess = repository.DataAccess{Tables: adminTables}.Normalize()
		default:
			u.DataAccess = repository.DataAccess{}.Normalize()
		}
		users[name] = u
	}
	return users, nil
}

// writeAll persiste el mapping completo. Debe llamarse con r.mu tomado.
func (r *userRepo) writeAll(users map[string]repository.User) error {
	if dir := filepath.Dir(r.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to ensure users directory: %w", err)
		}
	}
	out := make(map[string]record, len(users))
	for name, u := range users {
		da := u.DataAccess.Normalize()
		out[name] = record{Password: u.PasswordHash, Role: u.Role, DataAccess: &da}
	}
	if err := atomicwrite.WriteJSON(r.path, out, 0o600); err != nil {
		return fmt.Errorf("failed to write users file: %w", err)
	}
	return nil
}

func (r *userRepo) Get(ctx context.Context, username string) (*repository.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.readAll(ctx)
	if err != nil {
		return nil, err
	}
	u, ok := users[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *userRepo) List(ctx context.Context) ([]repository.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.readAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]repository.User, 0, len(users))
	for _, u := range users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (r *userRepo) Create(ctx context.Context, in repository.CreateUserInput) (*repository.User, error) {
	if strings.TrimSpace(in.Username) == "" || in.PasswordHash == "" {
		return nil, repository.ErrInvalidInput
	}
	if in.Role != repository.RoleAdmin && in.Role != repository.RoleUser {
		return nil, repository.ErrInvalidInput
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.readAll(ctx)
	if err != nil {
		return nil, err
	}
	if _, exists := users[in.Username]; exists {
		return nil, fmt.Errorf("%w: user %q already exists", repository.ErrConflict, in.Username)
	}

	u := repository.User{
		Username:     in.Username,
		PasswordHash: in.PasswordHash,
		Role:         in.Role,
	}
	// admins arrancan con la lista actual, users sin nada
	if in.Role == repository.RoleAdmin {
		u.DataAccess = repository.DataAccess{Tables: in.Tables}.Normalize()
	} else {
		u.DataAccess = repository.DataAccess{}.Normalize()
	}
	users[in.Username] = u

	if err := r.writeAll(users); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) Delete(ctx context.Context, username string) error {
	if username == repository.AdminUsername {
		return repository.ErrReservedUser
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.readAll(ctx)
	if err != nil {
		return err
	}
	if _, ok := users[username]; !ok {
		return repository.ErrNotFound
	}
	delete(users, username)
	return r.writeAll(users)
}

func (r *userRepo) UpdateAccess(ctx context.Context, username string, access repository.DataAccess) (*repository.User, error) {
	access = access.Normalize()
	if err := access.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.readAll(ctx)
	if err != nil {
		return nil, err
	}
	u, ok := users[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u.DataAccess = access
	users[username] = u

	if err := r.writeAll(users); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) EnsureAdmin(ctx context.Context, passwordHash string, tables []string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := os.Stat(r.path); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, err
	}

	users := map[string]repository.User{
		repository.AdminUsername: {
			Username:     repository.AdminUsername,
			PasswordHash: passwordHash,
			Role:         repository.RoleAdmin,
			DataAccess:   repository.DataAccess{Tables: tables},
		},
	}
	if err := r.writeAll(users); err != nil {
		return false, err
	}
	return true, nil
}
