package middlewares

import "net/http"

// Middleware decora un http.Handler. Es alias (no tipo nuevo) para poder
// pasar un Stack directo a r.Use de chi.
type Middleware = func(http.Handler) http.Handler

// Stack es una lista ordenada de middlewares: el primero es el más externo.
// Stack{A, B}.Then(h) ejecuta A -> B -> h.
type Stack []Middleware

// Then envuelve h con todo el stack.
func (s Stack) Then(h http.Handler) http.Handler {
	for i := len(s) - 1; i >= 0; i-- {
		h = s[i](h)
	}
	return h
}

// API es la cadena base de los endpoints /v1: headers de seguridad,
// no-store y logging por request.
func API() Stack {
	return Stack{
		WithSecurityHeaders(),
		WithNoStore(),
		WithLogging(),
	}
}
