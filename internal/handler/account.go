package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ligo/internal/service"
)

// AccountHandler handles HTTP requests for linked telematics accounts.
type AccountHandler struct {
	accountService *service.AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountService *service.AccountService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
	}
}

// AuthorizeRequest is the HTTP request body for linking an account.
type AuthorizeRequest struct {
	Code string `json:"code"`
}

// AuthorizeResponse is the HTTP response for linking an account.
type AuthorizeResponse struct {
	ID             string    `json:"id"`
	Provider       string    `json:"provider"`
	ExternalUserID string    `json:"external_user_id"`
	TokenExpiresAt time.Time `json:"token_expires_at"`
}

// Authorize handles POST /api/v0/:provider/authorize
func (h *AccountHandler) Authorize(c *gin.Context) {
	var req AuthorizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	if req.Code == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "authorization code is required"})
		return
	}

	account, err := h.accountService.Authorize(c.Request.Context(), c.Param("provider"), req.Code)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, AuthorizeResponse{
		ID:             account.ID,
		Provider:       account.Provider,
		ExternalUserID: account.ExternalUserID,
		TokenExpiresAt: account.TokenExpiresAt,
	})
}
