package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/folio-social/folio/internal/accounts"
	"github.com/folio-social/folio/internal/models"
	"github.com/folio-social/folio/pkg/logging"
)

// AccountService defines the account operations used by AccountHandler
type AccountService interface {
	Register(ctx context.Context, in accounts.RegisterInput) (*models.AccountView, error)
	Authenticate(ctx context.Context, email, password string) (*models.AccountView, error)
	Search(ctx context.Context, query string) (*models.AccountView, error)
	Get(ctx context.Context, id int64) (*models.AccountView, error)
	Details(ctx context.Context, id int64) (*models.AccountDetails, error)
	Delete(ctx context.Context, id int64) error
	Folios(ctx context.Context, id int64) ([]string, error)
	SetFolios(ctx context.Context, id int64, folios []string) ([]string, error)
}

// FollowGraph defines the follow operations used by AccountHandler
type FollowGraph interface {
	Follow(ctx context.Context, followerID, followedID int64) error
	Unfollow(ctx context.Context, followerID, followedID int64) error
}

// AccountHandler serves the /user endpoints
type AccountHandler struct {
	accounts AccountService
	follows  FollowGraph
	logger   *zap.Logger
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(accounts AccountService, follows FollowGraph) *AccountHandler {
	return &AccountHandler{
		accounts: accounts,
		follows:  follows,
		logger:   logging.WithComponent("api-accounts"),
	}
}

// RegisterRequest is the input of POST /user/new_user
type RegisterRequest struct {
	Email    string `form:"email" json:"email" validate:"required,email,max=250"`
	Username string `form:"username" json:"username" validate:"required,max=250"`
	Password string `form:"password" json:"password" validate:"required,max=72"`
	Name     string `form:"name" json:"name" validate:"required,max=250"`

	Facebook  string `form:"facebook" json:"facebook" validate:"max=250"`
	Instagram string `form:"instagram" json:"instagram" validate:"max=250"`
	Twitter   string `form:"twitter" json:"twitter" validate:"max=250"`
	LinkedIn  string `form:"linkedin" json:"linkedin" validate:"max=250"`
	GitHub    string `form:"github" json:"github" validate:"max=250"`
	YouTube   string `form:"youtube" json:"youtube" validate:"max=250"`
	TikTok    string `form:"tiktok" json:"tiktok" validate:"max=250"`
	Website   string `form:"website" json:"website" validate:"max=250"`
}

func (r RegisterRequest) handles() map[string]string {
	return map[string]string{
		"facebook":  r.Facebook,
		"instagram": r.Instagram,
		"twitter":   r.Twitter,
		"linkedin":  r.LinkedIn,
		"github":    r.GitHub,
		"youtube":   r.YouTube,
		"tiktok":    r.TikTok,
		"website":   r.Website,
	}
}

// AuthenticateRequest is the input of GET /user/authenticate
type AuthenticateRequest struct {
	Email    string `form:"email" json:"email" validate:"required"`
	Password string `form:"password" json:"password" validate:"required"`
}

// SearchRequest is the input of GET /user/search
type SearchRequest struct {
	Query string `form:"query" json:"query" validate:"required"`
}

// DeleteRequest is the input of POST /user/delete
type DeleteRequest struct {
	ID int64 `form:"id" json:"id" validate:"gt=0"`
}

// FollowRequest is the input of POST /user/follow and /user/unfollow
type FollowRequest struct {
	FollowerID int64 `form:"follower_id" json:"follower_id" validate:"gt=0"`
	FollowedID int64 `form:"followed_id" json:"followed_id" validate:"gt=0"`
}

// FoliosRequest is the input of POST /users/:id/folios
type FoliosRequest struct {
	Folios []string `form:"folios" json:"folios" validate:"max=250,dive,max=250"`
}

// bind reads query/form or JSON input into req and validates it
func bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBind(req); err != nil {
		respond(c, http.StatusBadRequest, "Invalid request parameters")
		return false
	}
	if details := ValidateRequest(req); details != nil {
		respondValidation(c, details)
		return false
	}
	return true
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respond(c, http.StatusBadRequest, "Invalid account id")
		return 0, false
	}
	return id, true
}

// Register handles POST /user/new_user
func (h *AccountHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !bind(c, &req) {
		return
	}

	view, err := h.accounts.Register(c.Request.Context(), accounts.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		RealName: req.Name,
		Handles:  req.handles(),
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respond(c, http.StatusCreated, view)
}

// Delete handles POST /user/delete
func (h *AccountHandler) Delete(c *gin.Context) {
	var req DeleteRequest
	if !bind(c, &req) {
		return
	}

	if err := h.accounts.Delete(c.Request.Context(), req.ID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, "Account deleted")
}

// Authenticate handles GET /user/authenticate
func (h *AccountHandler) Authenticate(c *gin.Context) {
	var req AuthenticateRequest
	if !bind(c, &req) {
		return
	}

	view, err := h.accounts.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, view)
}

// Search handles GET /user/search
func (h *AccountHandler) Search(c *gin.Context) {
	var req SearchRequest
	if !bind(c, &req) {
		return
	}

	view, err := h.accounts.Search(c.Request.Context(), req.Query)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, view)
}

// Follow handles POST /user/follow
func (h *AccountHandler) Follow(c *gin.Context) {
	var req FollowRequest
	if !bind(c, &req) {
		return
	}

	if err := h.follows.Follow(c.Request.Context(), req.FollowerID, req.FollowedID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, "Followed")
}

// Unfollow handles POST /user/unfollow
func (h *AccountHandler) Unfollow(c *gin.Context) {
	var req FollowRequest
	if !bind(c, &req) {
		return
	}

	if err := h.follows.Unfollow(c.Request.Context(), req.FollowerID, req.FollowedID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, "Unfollowed")
}

// Get handles GET /users/:id
func (h *AccountHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	view, err := h.accounts.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, view)
}

// Details handles GET /users/:id/details
func (h *AccountHandler) Details(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	details, err := h.accounts.Details(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, details)
}

// Folios handles GET /users/:id/folios
func (h *AccountHandler) Folios(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	folios, err := h.accounts.Folios(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, folios)
}

// SetFolios handles POST /users/:id/folios
func (h *AccountHandler) SetFolios(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req FoliosRequest
	if !bind(c, &req) {
		return
	}

	folios, err := h.accounts.SetFolios(c.Request.Context(), id, req.Folios)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, folios)
}
