// Package admin contiene los DTOs de gestión de usuarios.
package admin

import "github.com/dropDatabas3/datagate/internal/domain/repository"

// UserListResponse GET /v1/admin/users.
type UserListResponse struct {
	Users []repository.UserSummary `json:"users"`
}

// CreateUserRequest POST /v1/admin/users.
type CreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// AccessResponse es el editor de permisos de un usuario.
type AccessResponse struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	// Tables es la allow-list guardada, tal cual.
	Tables []string `json:"tables"`
	// Selected son las tablas guardadas que todavía existen.
	Selected   []string          `json:"selected"`
	Available  []string          `json:"available"`
	RowFilters map[string]string `json:"row_filters"`
	FilterMode string            `json:"filter_mode"`
}

// UpdateAccessRequest PUT /v1/admin/users/{username}/access. Reemplazo total.
type UpdateAccessRequest struct {
	Tables     []string          `json:"tables"`
	RowFilters map[string]string `json:"row_filters"`
}
