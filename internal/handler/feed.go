package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"status-sentiment/internal/auth"
	"status-sentiment/internal/feed/vk"
	"status-sentiment/internal/middleware"
	"status-sentiment/internal/models"
	"status-sentiment/internal/service"
)

const stateCookie = "vk_oauth_state"

// CodeExchanger is the VK authorization code flow.
type CodeExchanger interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*vk.Grant, error)
}

// FetcherFactory builds a wall reader for one access token.
type FetcherFactory func(accessToken string) (service.WallFetcher, error)

// FeedHandler serves VK login and wall import.
type FeedHandler struct {
	oauth      CodeExchanger
	feed       *service.FeedService
	tokens     auth.Service
	newFetcher FetcherFactory
	importOn   bool
	logger     *zap.Logger
}

func NewFeedHandler(oauth CodeExchanger, feed *service.FeedService, tokens auth.Service, newFetcher FetcherFactory, importOn bool, logger *zap.Logger) *FeedHandler {
	return &FeedHandler{
		oauth:      oauth,
		feed:       feed,
		tokens:     tokens,
		newFetcher: newFetcher,
		importOn:   importOn,
		logger:     logger,
	}
}

// RegisterAuthRoutes registers the public OAuth routes.
func (h *FeedHandler) RegisterAuthRoutes(authGroup *gin.RouterGroup) {
	authGroup.GET("/vk/url", h.AuthURL)
	authGroup.GET("/vk/callback", h.Callback)
}

// RegisterRoutes registers the authenticated import route.
func (h *FeedHandler) RegisterRoutes(api *gin.RouterGroup) {
	api.POST("/feed/vk/import", h.Import)
}

func (h *FeedHandler) AuthURL(c *gin.Context) {
	state, err := randomState()
	if err != nil {
		h.logger.Error("Failed to generate OAuth state", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start VK login"})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookie, state, 600, "/api/auth/vk", "", false, true)
	c.JSON(http.StatusOK, gin.H{"url": h.oauth.AuthURL(state)})
}

// Callback finishes VK login, issues a token for vk:<id> and, when enabled,
// imports the user's wall right away.
func (h *FeedHandler) Callback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing code"})
		return
	}
	expected, err := c.Cookie(stateCookie)
	if err != nil || expected == "" || expected != c.Query("state") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid OAuth state"})
		return
	}

	grant, err := h.oauth.Exchange(c.Request.Context(), code)
	if err != nil {
		h.logger.Warn("VK code exchange failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "VK login failed"})
		return
	}

	token, expiresAt, err := h.tokens.IssueToken(grant.HistoryID(), "")
	if err != nil {
		respondError(c, h.logger, "issue token", err)
		return
	}

	resp := gin.H{
		"token":      token,
		"expires_at": expiresAt,
		"user_id":    grant.HistoryID(),
	}

	if h.importOn {
		report, err := h.importWall(c.Request.Context(), *grant)
		if err != nil {
			respondError(c, h.logger, "import VK wall", err)
			return
		}
		resp["import"] = report
	}

	c.JSON(http.StatusOK, resp)
}

type importRequest struct {
	AccessToken string `json:"access_token" binding:"required"`
}

// Import re-reads the wall of the authenticated VK user.
func (h *FeedHandler) Import(c *gin.Context) {
	if !h.importOn {
		c.JSON(http.StatusNotFound, gin.H{"error": "feed import is disabled"})
		return
	}

	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	vkID, ok := strings.CutPrefix(middleware.UserID(c), "vk:")
	userID, err := strconv.ParseInt(vkID, 10, 64)
	if !ok || err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "feed import requires a VK login"})
		return
	}

	report, err := h.importWall(c.Request.Context(), vk.Grant{AccessToken: req.AccessToken, UserID: userID})
	if err != nil {
		respondError(c, h.logger, "import VK wall", err)
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *FeedHandler) importWall(ctx context.Context, grant vk.Grant) (models.ImportReport, error) {
	fetcher, err := h.newFetcher(grant.AccessToken)
	if err != nil {
		return models.ImportReport{}, fmt.Errorf("%w: %w", service.ErrFeedUnavailable, err)
	}
	return h.feed.ImportWall(ctx, grant, fetcher)
}

func randomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
