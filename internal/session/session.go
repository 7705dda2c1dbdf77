// Package session emite y valida las sesiones del dashboard.
//
// El token es un JWT HS256 con el session id en "sid". El id además tiene que
// existir en el cache: logout lo borra y el token deja de servir aunque la
// firma siga siendo válida.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dropDatabas3/datagate/internal/cache"
	"github.com/dropDatabas3/datagate/internal/domain/repository"
	tokens "github.com/dropDatabas3/datagate/internal/security/token"
)

var (
	ErrInvalidSession = errors.New("session: invalid or expired session")
	ErrWeakSecret     = errors.New("session: jwt secret must be at least 32 bytes")
)

// Session es el estado de un usuario logueado.
type Session struct {
	ID            string          `json:"id"`
	Authenticated bool            `json:"authenticated"`
	Username      string          `json:"username"`
	Role          repository.Role `json:"role"`
	IssuedAt      time.Time       `json:"issued_at"`
	ExpiresAt     time.Time       `json:"expires_at"`
}

// IsAdmin reporta si la sesión es de un admin.
func (s Session) IsAdmin() bool { return s.Role == repository.RoleAdmin }

type claims struct {
	SID  string `json:"sid"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Manager crea, resuelve y revoca sesiones.
type Manager struct {
	cache  cache.Client
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// NewManager crea el manager. secret debe tener al menos 32 bytes.
func NewManager(c cache.Client, secret []byte, ttl time.Duration) (*Manager, error) {
	if len(secret) < 32 {
		return nil, ErrWeakSecret
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Manager{cache: c, secret: secret, ttl: ttl, issuer: "datagate", now: time.Now}, nil
}

// TTL devuelve la duración de las sesiones.
func (m *Manager) TTL() time.Duration { return m.ttl }

func cacheKey(sid string) string { return "session:" + tokens.SHA256Base64URL(sid) }

// Create abre una sesión para u y devuelve el token firmado.
func (m *Manager) Create(ctx context.Context, u repository.User) (string, Session, error) {
	now := m.now().UTC().Truncate(time.Second)
	s := Session{
		ID:            uuid.NewString(),
		Authenticated: true,
		Username:      u.Username,
		Role:          u.Role,
		IssuedAt:      now,
		ExpiresAt:     now.Add(m.ttl),
	}

	raw, err := json.Marshal(s)
	if err != nil {
		return "", Session{}, err
	}
	if err := m.cache.Set(ctx, cacheKey(s.ID), string(raw), m.ttl); err != nil {
		return "", Session{}, fmt.Errorf("session: store: %w", err)
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		SID:  s.ID,
		Role: string(s.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   s.Username,
			IssuedAt:  jwt.NewNumericDate(s.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
		},
	})
	signed, err := tok.SignedString(m.secret)
	if err != nil {
		_ = m.cache.Delete(ctx, cacheKey(s.ID))
		return "", Session{}, fmt.Errorf("session: sign: %w", err)
	}
	return signed, s, nil
}

func (m *Manager) parse(token string) (*claims, error) {
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || c.SID == "" {
		return nil, ErrInvalidSession
	}
	return &c, nil
}

// Resolve valida el token y devuelve la sesión guardada.
func (m *Manager) Resolve(ctx context.Context, token string) (*Session, error) {
	c, err := m.parse(token)
	if err != nil {
		return nil, err
	}
	raw, err := m.cache.Get(ctx, cacheKey(c.SID))
	if err != nil {
		if cache.IsNotFound(err) {
			return nil, ErrInvalidSession
		}
		return nil, fmt.Errorf("session: load: %w", err)
	}
	var s Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, ErrInvalidSession
	}
	if !s.Authenticated || s.Username != c.Subject || m.now().After(s.ExpiresAt) {
		return nil, ErrInvalidSession
	}
	return &s, nil
}

// Revoke borra la sesión. Un token inválido no es error: ya no sirve.
func (m *Manager) Revoke(ctx context.Context, token string) error {
	c, err := m.parse(token)
	if err != nil {
		return nil
	}
	return m.cache.Delete(ctx, cacheKey(c.SID))
}

type ctxKey struct{}

// WithSession guarda la sesión en el contexto del request.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext devuelve la sesión del request, si hay.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	return s, ok && s != nil
}
