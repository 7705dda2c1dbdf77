package warehouse

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Kind clasifica los errores del warehouse.
type Kind int

const (
	KindUnclassified Kind = iota
	KindNotFound
	KindMalformed
	KindForbidden
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindMalformed:
		return "malformed_request"
	case KindForbidden:
		return "forbidden"
	case KindUnavailable:
		return "unavailable"
	default:
		return "unclassified"
	}
}

// Error envuelve un error del backend con su clasificación.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("warehouse %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("warehouse %s (%s): %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap devuelve err envuelto con kind. nil queda nil.
func Wrap(op string, kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// ErrUnavailable se usa cuando no hay cliente (modo demo).
var ErrUnavailable = &Error{Kind: KindUnavailable, Err: errors.New("warehouse client is not available")}

// KindOf devuelve la clasificación de err. Errores sin clasificar de
// contexto o de red cuentan como unavailable.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnclassified
	}
	var we *Error
	if errors.As(err, &we) {
		return we.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindUnavailable
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return KindUnavailable
	}
	return KindUnclassified
}
