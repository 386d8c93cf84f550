package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/AlexHayrapetyan/RestoBook/middlewares"
	"github.com/AlexHayrapetyan/RestoBook/services"
	"github.com/AlexHayrapetyan/RestoBook/utils"
	"github.com/gin-gonic/gin"
)

type UserController struct {
	Accounts *services.AccountService
}

func NewUserController(accounts *services.AccountService) *UserController {
	return &UserController{Accounts: accounts}
}

// Signup -> registrasi customer baru beserta data kartu
func (uc *UserController) Signup(c *gin.Context) {
	var req services.SignupRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("Please fill out all fields."))
		return
	}

	user, err := uc.Accounts.Signup(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Account created successfully.", gin.H{
		"user_id":  user.ID,
		"username": user.Username,
	})
}

// Login user -> return JWT
func (uc *UserController) Login(c *gin.Context) {
	var input struct {
		Username string `json:"username" form:"username" binding:"required"`
		Password string `json:"password" form:"password" binding:"required"`
	}
	if err := c.ShouldBind(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("Please enter your username and password."))
		return
	}

	user, err := uc.Accounts.Authenticate(c.Request.Context(), input.Username, input.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Role)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Infof("Login successful for user: %s, role: %s", user.Username, user.Role)
	utils.RespondJSON(c, http.StatusOK, "Login successful", gin.H{
		"token":      token,
		"user_role":  user.Role,
		"expires_in": int(utils.SessionTTL / time.Second),
	})
}

// Logout -> token masuk blacklist sampai expired
func (uc *UserController) Logout(c *gin.Context) {
	token := c.GetString(middlewares.ContextToken)
	expiry, _ := c.Get(middlewares.ContextTokenExpiry)
	expiresAt, _ := expiry.(time.Time)
	utils.BlacklistToken(token, expiresAt)

	utils.RespondJSON(c, http.StatusOK, "You have been logged out.", nil)
}

// GetProfile -> data akun user yang sedang login
func (uc *UserController) GetProfile(c *gin.Context) {
	userID := middlewares.CurrentUserID(c)
	if userID == 0 {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("user id not found in context"))
		return
	}

	profile, err := uc.Accounts.Profile(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "User profile", profile)
}
