package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/demeter/middlewares"
	"github.com/yeremiapane/demeter/services"
	"github.com/yeremiapane/demeter/utils"
)

// UserController handles staff login, logout and registration.
type UserController struct {
	Staff  *services.StaffService
	Tokens *utils.TokenManager
}

func NewUserController(staff *services.StaffService, tokens *utils.TokenManager) *UserController {
	return &UserController{Staff: staff, Tokens: tokens}
}

// Register -> admin only; role is admin, staff or chef
func (uc *UserController) Register(c *gin.Context) {
	var req struct {
		ID     string `json:"id" binding:"required"`
		Secret string `json:"secret" binding:"required"`
		Role   string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	outcome, err := uc.Staff.Register(c.Request.Context(), req.ID, req.Secret, req.Role)
	if err != nil {
		respondFailure(c, err)
		return
	}
	respondOutcome(c, outcome, http.StatusCreated, gin.H{"id": req.ID, "role": req.Role})
}

func (uc *UserController) Login(c *gin.Context) {
	var req struct {
		ID     string `json:"id" binding:"required"`
		Secret string `json:"secret" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	staff, ok, err := uc.Staff.Verify(c.Request.Context(), req.ID, req.Secret)
	if err != nil {
		respondFailure(c, err)
		return
	}
	if !ok {
		utils.InfoLogger.WithField("staff", req.ID).Warn("login refused")
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid id or secret"))
		return
	}

	token, err := uc.Tokens.GenerateToken(staff.ID, staff.Role)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.WithField("staff", staff.ID).Info("login")
	utils.RespondJSON(c, http.StatusOK, "Login success", gin.H{
		"token": token,
		"id":    staff.ID,
		"role":  staff.Role,
	})
}

// Logout revokes the token used for this request.
func (uc *UserController) Logout(c *gin.Context) {
	uc.Tokens.Revoke(c.GetString(middlewares.ContextToken))
	utils.RespondJSON(c, http.StatusOK, "Logged out", nil)
}

// Me -> who the token belongs to
func (uc *UserController) Me(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "Current staff", gin.H{
		"id":   c.GetString(middlewares.ContextStaffID),
		"role": c.GetString(middlewares.ContextRole),
	})
}
