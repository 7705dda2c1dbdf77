package repository

import (
	"context"
	"fmt"
	"strings"
)

// Role de un usuario del dashboard.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// AdminUsername es la cuenta reservada que nunca se puede borrar.
const AdminUsername = "admin"

// ParseRole valida un rol recibido desde la API o el CLI.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleUser:
		return RoleUser, nil
	default:
		return "", fmt.Errorf("%w: unknown role %q", ErrInvalidInput, s)
	}
}

// DataAccess es la allow-list de tablas de un usuario y sus row filters.
// Las tablas son nombres calificados "dataset.table" en el orden que eligió el admin.
type DataAccess struct {
	Tables     []string          `json:"tables"`
	RowFilters map[string]string `json:"row_filters"`
}

// Normalize reemplaza nil por vacío y descarta filtros vacíos.
func (d DataAccess) Normalize() DataAccess {
	out := DataAccess{
		Tables:     make([]string, 0, len(d.Tables)),
		RowFilters: make(map[string]string, len(d.RowFilters)),
	}
	out.Tables = append(out.Tables, d.Tables...)
	for t, f := range d.RowFilters {
		if f = strings.TrimSpace(f); f != "" {
			out.RowFilters[t] = f
		}
	}
	return out
}

// Validate exige que cada row filter apunte a una tabla de la allow-list.
func (d DataAccess) Validate() error {
	listed := make(map[string]struct{}, len(d.Tables))
	for _, t := range d.Tables {
		if strings.TrimSpace(t) == "" {
			return fmt.Errorf("%w: empty table name", ErrInvalidInput)
		}
		listed[t] = struct{}{}
	}
	for t := range d.RowFilters {
		if _, ok := listed[t]; !ok {
			return fmt.Errorf("%w: %s", ErrFilterWithoutTable, t)
		}
	}
	return nil
}

// HasTable indica si t está en la allow-list.
func (d DataAccess) HasTable(t string) bool {
	for _, x := range d.Tables {
		if x == t {
			return true
		}
	}
	return false
}

// User es un registro del archivo de credenciales.
type User struct {
	Username     string     `json:"-"`
	PasswordHash string     `json:"password"`
	Role         Role       `json:"role"`
	DataAccess   DataAccess `json:"data_access"`
}

// IsAdmin reporta si el usuario tiene rol admin.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// UserSummary es la fila del listado de administración.
type UserSummary struct {
	Username      string `json:"username"`
	Role          Role   `json:"role"`
	TableCount    int    `json:"table_count"`
	HasRowFilters bool   `json:"has_row_filters"`
}

// Summary arma la fila de listado del usuario.
func (u User) Summary() UserSummary {
	return UserSummary{
		Username:      u.Username,
		Role:          u.Role,
		TableCount:    len(u.DataAccess.Tables),
		HasRowFilters: len(u.DataAccess.RowFilters) > 0,
	}
}

// CreateUserInput datos para crear un usuario. PasswordHash ya viene hasheado.
type CreateUserInput struct {
	Username     string
	PasswordHash string
	Role         Role
	// Tables se asigna sólo a admins (snapshot de la lista actual).
	Tables []string
}

// UserRepository persiste el mapping username -> User.
type UserRepository interface {
	// Get busca por username exacto. Retorna ErrNotFound si no existe.
	Get(ctx context.Context, username string) (*User, error)

	// List retorna todos los usuarios ordenados por username.
	List(ctx context.Context) ([]User, error)

	// Create agrega un usuario. Retorna ErrConflict si ya existe.
	Create(ctx context.Context, in CreateUserInput) (*User, error)

	// Delete elimina un usuario. ErrReservedUser para admin, ErrNotFound si no existe.
	Delete(ctx context.Context, username string) error

	// UpdateAccess reemplaza tablas y filtros del usuario.
	// Retorna ErrFilterWithoutTable si un filtro apunta fuera de las tablas.
	UpdateAccess(ctx context.Context, username string, access DataAccess) (*User, error)

	// EnsureAdmin crea el archivo con la cuenta admin si no existe.
	// Devuelve true si lo creó.
	EnsureAdmin(ctx context.Context, passwordHash string, tables []string) (bool, error)
}
