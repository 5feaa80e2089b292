package controllers

import (
	"net/http"

	"rageroom-backend/services"

	"github.com/gin-gonic/gin"
)

type RoomInfoController struct {
	RoomInfo *services.RoomInfoService
}

func NewRoomInfoController(svc *services.RoomInfoService) *RoomInfoController {
	return &RoomInfoController{RoomInfo: svc}
}

// GET /api/room-info
func (ctrl *RoomInfoController) GetRoomInfo(c *gin.Context) {
	info, err := ctrl.RoomInfo.Get(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// PATCH /api/room-info
func (ctrl *RoomInfoController) UpdateRoomInfo(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	if !a.IsAdmin {
		respondError(c, services.ErrAdminOnlyRoomInfo)
		return
	}

	var payload services.RoomInfoPatch
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, services.ErrInvalidBody)
		return
	}

	info, err := ctrl.RoomInfo.Update(c.Request.Context(), a, payload)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}
