package middleware

import "net/http"

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Stack is an ordered middleware list. The first entry sees the request
// first: Stack{RequestID, Recovery}.Then(h) is RequestID(Recovery(h)).
type Stack []Middleware

// Then wraps h with every middleware in the stack.
func (s Stack) Then(h http.Handler) http.Handler {
	for i := len(s) - 1; i >= 0; i-- {
		h = s[i](h)
	}
	return h
}

// ThenFunc is Then for a plain handler function.
func (s Stack) ThenFunc(fn http.HandlerFunc) http.Handler {
	return s.Then(fn)
}
