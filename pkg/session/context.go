package session

import "context"

type ctxKey struct{}

// NewContext returns ctx carrying s
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session stored by the gate, or nil
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(ctxKey{}).(*Session)
	return s
}

// UserFromContext returns the session user; the zero User when anonymous
func UserFromContext(ctx context.Context) User {
	if s := FromContext(ctx); s != nil {
		return s.User
	}
	return User{}
}
