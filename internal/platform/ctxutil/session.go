package ctxutil

import "context"

type sessionDataKey struct{}

// SessionData carries the logged-in caller through the request context.
// Phone is the login identity; IsAdmin widens the activity listing.
type SessionData struct {
	Phone   string
	Name    string
	IsAdmin bool
}

func WithSessionData(ctx context.Context, sd *SessionData) context.Context {
	return context.WithValue(ctx, sessionDataKey{}, sd)
}

func GetSessionData(ctx context.Context) *SessionData {
	val := ctx.Value(sessionDataKey{})
	if sd, ok := val.(*SessionData); ok {
		return sd
	}
	return nil
}
