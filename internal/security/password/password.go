// Package password hashea y verifica las contraseñas del archivo de usuarios.
//
// El formato histórico del archivo es sha256 hex sin salt; es el default y se
// compara en tiempo constante. argon2id existe como esquema
// opt-in para usuarios nuevos: Verify reconoce ambos formatos por prefijo.
package password

import (
	"errors"
	"fmt"
	"strings"

	tokens "github.com/dropDatabas3/datagate/internal/security/token"
)

// Scheme identifica el algoritmo usado para hashear contraseñas nuevas.
type Scheme string

const (
	SchemeSHA256   Scheme = "sha256"
	SchemeArgon2id Scheme = "argon2id"
)

var ErrEmptyPassword = errors.New("password: empty password")

// ParseScheme normaliza el valor de configuración. Vacío => sha256.
func ParseScheme(s string) (Scheme, error) {
	switch Scheme(strings.ToLower(strings.TrimSpace(s))) {
	case "", SchemeSHA256:
		return SchemeSHA256, nil
	case SchemeArgon2id:
		return SchemeArgon2id, nil
	default:
		return "", fmt.Errorf("password: unknown scheme %q", s)
	}
}

// Hash hashea plain con el esquema indicado.
func Hash(scheme Scheme, plain string) (string, error) {
	if plain == "" {
		return "", ErrEmptyPassword
	}
	switch scheme {
	case SchemeArgon2id:
		return hashArgon2id(DefaultArgon2, plain)
	case SchemeSHA256, "":
		return tokens.SHA256Hex(plain), nil
	default:
		return "", fmt.Errorf("password: unknown scheme %q", scheme)
	}
}

// Verify compara plain contra el hash almacenado.
func Verify(plain, stored string) bool {
	if strings.HasPrefix(stored, argon2Prefix) {
		return verifyArgon2id(plain, stored)
	}
	return tokens.EqualSHA256Hex(plain, stored)
}
