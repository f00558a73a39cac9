package api

import (
	"context"
	"net/http"

	"github.com/maybepratikk/flexihub-landing-connect-sub000/errs"
	"github.com/maybepratikk/flexihub-landing-connect-sub000/services"
)

type keyType string

const sessionKey keyType = "session"

// session is established once per request by the auth middleware.
type session struct {
	Actor services.Actor
	Email string
}

func ctxWithSession(ctx context.Context, s session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

func ctxGetSession(ctx context.Context) (session, error) {
	s, ok := ctx.Value(sessionKey).(session)
	if !ok {
		return session{}, errs.NewUnauthorizedError("no session on request")
	}
	return s, nil
}

// actorFrom returns the request's actor.
func actorFrom(r *http.Request) (services.Actor, error) {
	s, err := ctxGetSession(r.Context())
	if err != nil {
		return services.Actor{}, err
	}
	return s.Actor, nil
}
