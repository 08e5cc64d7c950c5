package mux

import (
	"context"
	"net/http"
	"strings"

	gmux "github.com/gorilla/mux"
	"teenpatti-server/internal/jwt"
	"teenpatti-server/internal/metrics"
	"teenpatti-server/pkg/room"
)

type ctxKey int

const (
	ctxPlayerKey ctxKey = iota
)

const roomIDPattern = "{roomId:[A-Za-z0-9_-]{1,64}}"

// Mux handles HTTP requests
type Mux struct {
	*gmux.Router
	version string
	pitBoss *room.PitBoss

	// store for testing purposes
	authRouter *gmux.Router
}

// NewMux returns a new HTTP mux
func NewMux(version string, pitBoss *room.PitBoss) *Mux {
	this := &Mux{
		Router:  gmux.NewRouter(),
		version: version,
		pitBoss: pitBoss,
	}

	this.authRouter = this.Router.NewRoute().Subrouter()
	this.authRouter.Use(this.authMiddleware)

	// unauthorized endpoints
	{
		r := this.Router
		r.Methods(http.MethodGet).Path("/health").Handler(this.getHealth())
		r.Methods(http.MethodGet).Path("/metrics").Handler(metrics.Handler())
	}

	// requires bearer authorization
	{
		r := this.authRouter

		r.Methods(http.MethodGet).Path("/room").Handler(this.getRoom())
		r.Methods(http.MethodGet).Path("/room/" + roomIDPattern).Handler(this.getRoomID())
		r.Methods(http.MethodGet).Path("/room/" + roomIDPattern + "/ws").Handler(this.getRoomIDWS())
	}

	return this
}

func (m *Mux) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.FormValue("access_token")
		if token == "" {
			authHeader := strings.Split(r.Header.Get("Authorization"), " ")
			if len(authHeader) != 2 || strings.ToLower(authHeader[0]) != "bearer" {
				writeJSONError(w, http.StatusUnauthorized, nil)
				return
			}

			token = authHeader[1]
		}

		identity, err := jwt.Verify(token)
		if err != nil {
			writeJSONError(w, http.StatusUnauthorized, nil)
			return
		}

		player := room.Player{
			UserID:      identity.UserID,
			DisplayName: identity.DisplayName,
			Avatar:      identity.Avatar,
		}

		newCtx := context.WithValue(r.Context(), ctxPlayerKey, player)
		w.Header().Set("TeenPatti-UserID", player.UserID)
		next.ServeHTTP(w, r.WithContext(newCtx))
	})
}

func playerFromContext(ctx context.Context) room.Player {
	return ctx.Value(ctxPlayerKey).(room.Player)
}
