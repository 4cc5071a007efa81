package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"invoice-api/internal/middleware"
)

// AuthHandler serves the local server's token endpoints. Tokens only
// matter when the bearer guard is enabled; the Lambda deployment
// delegates authentication to API Gateway.
type AuthHandler struct {
	authService *middleware.AuthService
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authService *middleware.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// TokenRequest names the user a development token is issued for
type TokenRequest struct {
	Username string `json:"username"`
}

// TokenResponse carries an issued token and its owner
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      UserInfo  `json:"user"`
}

// UserInfo represents user information
type UserInfo struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

// RefreshTokenRequest represents the refresh token request
type RefreshTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

// @Summary Issue a development token
// @Description Mint an admin bearer token for local testing. Only mounted outside production.
// @Tags auth
// @Accept json
// @Produce json
// @Param user body TokenRequest false "Token owner, defaults to dev"
// @Success 200 {object} TokenResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/token [post]
func (h *AuthHandler) IssueToken(c *gin.Context) {
	var req TokenRequest
	// An empty body is fine, the username just defaults
	_ = c.ShouldBindJSON(&req)
	if req.Username == "" {
		req.Username = "dev"
	}

	user := UserInfo{
		ID:       "dev-" + req.Username,
		Username: req.Username,
		Email:    req.Username + "@invoice-api.local",
		Roles:    []string{string(middleware.RoleAdmin)},
	}

	token, err := h.authService.GenerateToken(user.ID, user.Username, user.Email, user.Roles)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, TokenResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(h.authService.TokenDuration()),
		User:      user,
	})
}

// @Summary Refresh a token
// @Description Exchange a valid token for a fresh one with extended expiration
// @Tags auth
// @Accept json
// @Produce json
// @Param token body RefreshTokenRequest true "Token to refresh"
// @Success 200 {object} TokenResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	newToken, err := h.authService.RefreshToken(req.Token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid or expired token"})
		return
	}

	claims, err := h.authService.ValidateToken(newToken)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to validate new token"})
		return
	}

	c.JSON(http.StatusOK, TokenResponse{
		Token:     newToken,
		ExpiresAt: claims.ExpiresAt.Time,
		User: UserInfo{
			ID:       claims.UserID,
			Username: claims.Username,
			Email:    claims.Email,
			Roles:    claims.Roles,
		},
	})
}

// @Summary Get current user
// @Description Get information about the currently authenticated user
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserInfo
// @Failure 401 {object} ErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID, username, email, roles, ok := middleware.GetUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Not authenticated"})
		return
	}
	if roles == nil {
		roles = []string{}
	}

	c.JSON(http.StatusOK, UserInfo{
		ID:       userID,
		Username: username,
		Email:    email,
		Roles:    roles,
	})
}
