package tokens

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// GenerateOpaqueToken genera un token opaco aleatorio (base64url sin padding).
// Se usa como session id.
func GenerateOpaqueToken(nBytes int) (string, error) {
	if nBytes <= 0 {
		return "", fmt.Errorf("tokens: invalid size %d", nBytes)
	}
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// SHA256Base64URL devuelve sha256(input) en base64url sin padding.
// Es la forma en que los session ids se guardan como key de cache.
func SHA256Base64URL(s string) string {
	sum := sha256.Sum256([]byte(s))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// SHA256Hex devuelve sha256(input) en hexadecimal en minúsculas (64 chars).
// Es el formato de password_hash del archivo de usuarios.
func SHA256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// EqualSHA256Hex compara sha256(plain) en hex minúscula contra el hash
// guardado, byte a byte y en tiempo constante.
func EqualSHA256Hex(plain, storedHex string) bool {
	return subtle.ConstantTimeCompare([]byte(SHA256Hex(plain)), []byte(storedHex)) == 1
}
