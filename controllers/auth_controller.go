package controllers

import (
	"net/http"

	"rageroom-backend/services"

	"github.com/gin-gonic/gin"
)

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthController struct {
	Auth *services.AuthService
}

func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{Auth: auth}
}

func (ctrl *AuthController) sessionBody(userID, email, fullName, role, token string) gin.H {
	return gin.H{
		"token": token,
		"user": gin.H{
			"id":        userID,
			"email":     email,
			"full_name": fullName,
			"role":      role,
			"is_admin":  ctrl.Auth.Admins.IsAdmin(email, role),
		},
	}
}

// POST /api/auth/signup
func (ctrl *AuthController) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, services.ErrInvalidBody)
		return
	}
	user, token, err := ctrl.Auth.Signup(c.Request.Context(), services.SignupInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ctrl.sessionBody(user.ID, user.Email, user.FullName, user.Role, token))
}

// POST /api/auth/login
func (ctrl *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, services.ErrInvalidBody)
		return
	}
	user, token, err := ctrl.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ctrl.sessionBody(user.ID, user.Email, user.FullName, user.Role, token))
}

// GET /api/auth/me
func (ctrl *AuthController) Me(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	user, err := ctrl.Auth.GetUser(c.Request.Context(), a.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":        user.ID,
		"email":     user.Email,
		"full_name": user.FullName,
		"role":      user.Role,
		"is_admin":  a.IsAdmin,
	})
}
