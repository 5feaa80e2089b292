package controllers

import (
	"errors"
	"net/http"

	"rageroom-backend/middleware"
	"rageroom-backend/services"
	"rageroom-backend/utils"

	"github.com/gin-gonic/gin"
)

// respondError maps an AppError to its status; anything else is a 500 carrying the backend message.
func respondError(c *gin.Context, err error) {
	var appErr *services.AppError
	if errors.As(err, &appErr) {
		utils.JSONError(c, appErr.Status, appErr.Code, appErr.Message)
		return
	}
	_ = c.Error(err)
	utils.JSONError(c, http.StatusInternalServerError, "error.internal", err.Error())
}

// actor returns the authenticated caller, writing a 401 when there is none.
func actor(c *gin.Context) (services.Actor, bool) {
	a, ok := middleware.ActorFrom(c)
	if !ok {
		respondError(c, services.ErrUnauthenticated)
	}
	return a, ok
}
