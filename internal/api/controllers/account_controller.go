package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"roteiro/internal/config"
	"roteiro/internal/models/request_models"
	"roteiro/internal/models/response_models"
	"roteiro/internal/serializers"
	"roteiro/internal/services"
	"roteiro/pkg/middleware"
	"roteiro/pkg/utils"
)

type AccountController struct {
	accountService services.AccountServiceInterface
	sessionCfg     config.SessionConfig
}

func NewAccountController(accountService services.AccountServiceInterface, cfg *config.Config) *AccountController {
	return &AccountController{
		accountService: accountService,
		sessionCfg:     cfg.Session,
	}
}

// Register godoc
// @Summary Register a new account
// @Description Create a new user account. No session is issued.
// @Tags Accounts
// @Accept json
// @Produce json
// @Param request body request_models.SignUpRequest true "Account registration payload"
// @Success 201 {object} utils.MessageResponse
// @Failure 400 {object} utils.ErrorResponse
// @Router /register/ [post]
func (a *AccountController) Register(c *gin.Context) {
	var req request_models.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.HandleServiceError(c, serializers.DecodeError(err))
		return
	}

	if err := a.accountService.CreateAccount(c.Request.Context(), req); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondMessage(c, http.StatusCreated, "Usuário criado com sucesso!")
}

// Login godoc
// @Summary Login to an account
// @Description Authenticate a user and start a cookie session
// @Tags Accounts
// @Accept json
// @Produce json
// @Param request body request_models.LoginRequest true "Login payload"
// @Success 200 {object} response_models.AccountLoginResponse
// @Failure 400 {object} utils.ErrorResponse
// @Router /login/ [post]
func (a *AccountController) Login(c *gin.Context) {
	var req request_models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.HandleServiceError(c, serializers.DecodeError(err))
		return
	}

	result, err := a.accountService.Login(c.Request.Context(), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	middleware.SetSessionCookie(c, a.sessionCfg, result.Token, result.ExpiresAt)
	middleware.IssueCSRFCookie(c, a.sessionCfg)

	utils.RespondSuccess(c, http.StatusOK, response_models.AccountLoginResponse{
		Message: "Login realizado com sucesso",
		User:    result.Account,
	})
}

// Logout godoc
// @Summary Logout
// @Description Revoke the current session and clear the session cookie
// @Tags Accounts
// @Produce json
// @Success 200 {object} utils.MessageResponse
// @Failure 401 {object} utils.ErrorResponse
// @Router /logout/ [post]
func (a *AccountController) Logout(c *gin.Context) {
	claims, _ := middleware.SessionClaims(c)
	a.accountService.Logout(claims)
	middleware.ClearSessionCookie(c, a.sessionCfg)

	utils.RespondMessage(c, http.StatusOK, "Logout realizado com sucesso")
}

// Me godoc
// @Summary Current account
// @Tags Accounts
// @Produce json
// @Success 200 {object} response_models.AccountResponse
// @Failure 401 {object} utils.ErrorResponse
// @Router /me/ [get]
func (a *AccountController) Me(c *gin.Context) {
	accountID, ok := middleware.CallerID(c)
	if !ok {
		utils.HandleServiceError(c, utils.ErrUnauthenticated)
		return
	}

	account, err := a.accountService.GetAccount(c.Request.Context(), accountID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, http.StatusOK, account)
}

// DeleteMe godoc
// @Summary Delete the current account
// @Description Deletes the account together with all of its trips
// @Tags Accounts
// @Success 204
// @Failure 401 {object} utils.ErrorResponse
// @Router /me/ [delete]
func (a *AccountController) DeleteMe(c *gin.Context) {
	accountID, ok := middleware.CallerID(c)
	if !ok {
		utils.HandleServiceError(c, utils.ErrUnauthenticated)
		return
	}
	claims, _ := middleware.SessionClaims(c)

	if err := a.accountService.DeleteAccount(c.Request.Context(), accountID, claims); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	middleware.ClearSessionCookie(c, a.sessionCfg)
	c.Status(http.StatusNoContent)
}
