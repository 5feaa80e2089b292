package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"rageroom-backend/services"
	"rageroom-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const actorKey = "actor"

// Authenticator resolves a bearer token into the calling actor.
type Authenticator interface {
	Authenticate(ctx context.Context, raw string) (services.Actor, error)
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	// Browsers cannot set headers on a websocket handshake.
	if websocket.IsWebSocketUpgrade(c.Request) {
		return c.Query("token")
	}
	return ""
}

// Authenticate rejects the request with 401 unless it carries a valid session token.
func Authenticate(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			utils.AbortJSONError(c, http.StatusUnauthorized, services.ErrUnauthenticated.Code, services.ErrUnauthenticated.Message)
			return
		}
		actor, err := auth.Authenticate(c.Request.Context(), raw)
		if errors.Is(err, services.ErrUnauthenticated) {
			utils.AbortJSONError(c, http.StatusUnauthorized, services.ErrUnauthenticated.Code, services.ErrUnauthenticated.Message)
			return
		}
		if err != nil {
			utils.AbortJSONError(c, http.StatusInternalServerError, "error.internal", err.Error())
			return
		}
		c.Set(actorKey, actor)
		c.Next()
	}
}

// ActorFrom returns the actor stored by Authenticate.
func ActorFrom(c *gin.Context) (services.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return services.Actor{}, false
	}
	actor, ok := v.(services.Actor)
	return actor, ok
}
