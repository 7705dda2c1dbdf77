package repository

import "errors"

var (
	// ErrNotFound indica que el recurso solicitado no existe.
	ErrNotFound = errors.New("not found")

	// ErrConflict indica un duplicado (username ya existente).
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput indica que los datos de entrada son inválidos.
	ErrInvalidInput = errors.New("invalid input")

	// ErrReservedUser indica una operación prohibida sobre la cuenta admin.
	ErrReservedUser = errors.New("reserved user")

	// ErrFilterWithoutTable indica un row filter sobre una tabla que no está en la allow-list.
	ErrFilterWithoutTable = errors.New("row filter references a table outside the allow-list")
)

// IsNotFound verifica si el error es ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict verifica si el error es ErrConflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
