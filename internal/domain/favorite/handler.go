package favorite

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"weatherdiary/internal/pkg/jwt"
	"weatherdiary/internal/pkg/response"
	"weatherdiary/internal/pkg/userlock"
	"weatherdiary/internal/pkg/validator"
)

// TokenVerifier checks the ?token= credential of websocket clients, which
// cannot send an Authorization header from a browser.
type TokenVerifier interface {
	ValidateToken(token string) (*jwt.Claims, error)
}

type Handler struct {
	service *Service
	hub     *Hub
	tokens  TokenVerifier
	log     *zap.Logger
}

func NewHandler(service *Service, hub *Hub, tokens TokenVerifier, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		service: service,
		hub:     hub,
		tokens:  tokens,
		log:     log,
	}
}

// List handles GET /api/v1/favorites
// @Summary List favorite locations
// @Description Returns the caller's live favorites ordered by slot
// @Tags Favorites
// @Produce json
// @Security BearerAuth
// @Success 200 {array} FavoriteResponse
// @Failure 401 {object} response.ErrorBody
// @Failure 500 {object} response.ErrorBody
// @Router /favorites [get]
func (h *Handler) List(c *gin.Context) {
	list, err := h.service.List(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, ToFavoriteListResponse(list))
}

// Get handles GET /api/v1/favorites/:id
// @Summary Get favorite location
// @Tags Favorites
// @Produce json
// @Security BearerAuth
// @Param id path int true "Favorite ID"
// @Success 200 {object} FavoriteResponse
// @Failure 404 {object} response.ErrorBody
// @Router /favorites/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	id, ok := favoriteID(c)
	if !ok {
		return
	}

	f, err := h.service.Get(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, ToFavoriteResponse(f))
}

// Create handles POST /api/v1/favorites
// @Summary Add favorite location
// @Description Stores the location in the smallest free slot (at most 3 per user)
// @Tags Favorites
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateFavoriteRequest true "Location"
// @Success 201 {object} CreatedResponse
// @Failure 400 {object} response.ErrorBody "validation_error or limit_exceeded"
// @Failure 409 {object} response.ErrorBody "already_exists"
// @Failure 503 {object} response.ErrorBody "lock_timeout"
// @Router /favorites [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreateFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "validation_error", "Invalid JSON body.")
		return
	}
	req.City = strings.TrimSpace(req.City)
	req.District = strings.TrimSpace(req.District)

	if errs := validator.Validate(&req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "validation_error", "Invalid favorite location.", errs)
		return
	}

	f, err := h.service.Create(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, CreatedResponse{ID: f.ID, Message: MsgCreated})
}

// Update handles PATCH /api/v1/favorites/:id. Only the alias may change;
// an absent alias key leaves the entry as it is.
// @Summary Rename favorite location
// @Tags Favorites
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Favorite ID"
// @Param request body UpdateAliasRequest true "Alias"
// @Success 200 {object} response.MessageBody
// @Failure 400 {object} response.ErrorBody "validation_error or order_not_allowed_here"
// @Failure 404 {object} response.ErrorBody
// @Router /favorites/{id} [patch]
func (h *Handler) Update(c *gin.Context) {
	id, ok := favoriteID(c)
	if !ok {
		return
	}

	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "validation_error", "Invalid JSON body.")
		return
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		response.Error(c, http.StatusBadRequest, "validation_error", "Invalid JSON body.")
		return
	}
	if _, has := fields["order"]; has {
		response.Error(c, http.StatusBadRequest, "order_not_allowed_here", "Use /favorites/reorder to change the order.")
		return
	}
	if _, has := fields["slot"]; has {
		response.Error(c, http.StatusBadRequest, "order_not_allowed_here", "Use /favorites/reorder to change the order.")
		return
	}

	userID := currentUserID(c)
	ctx := c.Request.Context()

	aliasRaw, has := fields["alias"]
	if !has {
		if _, err := h.service.Get(ctx, userID, id); err != nil {
			h.writeError(c, err)
			return
		}
		response.Message(c, http.StatusOK, MsgUpdated)
		return
	}

	var req UpdateAliasRequest
	if err := json.Unmarshal(aliasRaw, &req.Alias); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "validation_error", "Invalid alias.",
			map[string]string{"alias": "string"})
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "validation_error", "Invalid alias.", errs)
		return
	}

	if err := h.service.UpdateAlias(ctx, userID, id, req.Alias); err != nil {
		h.writeError(c, err)
		return
	}
	response.Message(c, http.StatusOK, MsgUpdated)
}

// Delete handles DELETE /api/v1/favorites/:id
// @Summary Remove favorite location
// @Description Soft-deletes the entry and closes the gap in the remaining slots
// @Tags Favorites
// @Security BearerAuth
// @Param id path int true "Favorite ID"
// @Success 204
// @Failure 404 {object} response.ErrorBody
// @Failure 503 {object} response.ErrorBody "lock_timeout"
// @Router /favorites/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	id, ok := favoriteID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), currentUserID(c), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Reorder handles PATCH /api/v1/favorites/reorder
// @Summary Reorder favorite locations
// @Description Assigns new slots to all live favorites at once
// @Tags Favorites
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body []ReorderItem true "Every live favorite with its new order"
// @Success 200 {object} response.MessageBody
// @Failure 400 {object} response.ErrorBody "invalid_format, invalid_favorite_id or invalid_order_values"
// @Failure 503 {object} response.ErrorBody "lock_timeout"
// @Router /favorites/reorder [patch]
func (h *Handler) Reorder(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.writeError(c, ErrInvalidFormat)
		return
	}
	items, err := DecodeReorder(raw)
	if err != nil {
		h.writeError(c, err)
		return
	}

	if err := h.service.Reorder(c.Request.Context(), currentUserID(c), items); err != nil {
		h.writeError(c, err)
		return
	}
	response.Message(c, http.StatusOK, MsgReordered)
}

// Replace handles PUT /api/v1/favorites/:id, which is not supported.
// @Summary Replace favorite location (not allowed)
// @Tags Favorites
// @Security BearerAuth
// @Param id path int true "Favorite ID"
// @Failure 405 {object} response.ErrorBody
// @Router /favorites/{id} [put]
func (h *Handler) Replace(c *gin.Context) {
	response.Error(c, http.StatusMethodNotAllowed, "method_not_allowed", "Use PATCH to update a favorite.")
}

// Subscribe handles GET /api/v1/favorites/ws?token=...
// @Summary Subscribe to favorite changes
// @Description Upgrades to a websocket that receives favorites_changed events
// @Tags Favorites
// @Param token query string true "Access token"
// @Success 101
// @Failure 401 {object} response.ErrorBody
// @Router /favorites/ws [get]
func (h *Handler) Subscribe(c *gin.Context) {
	claims, err := h.tokens.ValidateToken(c.Query("token"))
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token.")
		return
	}

	conn, err := h.hub.Upgrade(c.Writer, c.Request)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Int64("user_id", claims.UserID), zap.Error(err))
		return
	}
	h.hub.ServeWS(conn, claims.UserID)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "not_found", "Favorite not found.")
	case errors.Is(err, ErrLimitExceeded):
		response.Error(c, http.StatusBadRequest, "limit_exceeded", "You can keep at most 3 favorite locations.")
	case errors.Is(err, ErrAlreadyExists):
		response.Error(c, http.StatusConflict, "already_exists", "This location is already in your favorites.")
	case errors.Is(err, ErrInvalidFormat):
		response.Error(c, http.StatusBadRequest, "invalid_format", "Send a list of {id, order} objects.")
	case errors.Is(err, ErrInvalidFavoriteID):
		response.Error(c, http.StatusBadRequest, "invalid_favorite_id", "The ids must be exactly your current favorites.")
	case errors.Is(err, ErrInvalidOrderValues):
		response.Error(c, http.StatusBadRequest, "invalid_order_values", "The orders must be 0 to n-1, each used once.")
	case errors.Is(err, ErrSlotConflict):
		response.Error(c, http.StatusConflict, "slot_conflict", "Favorites changed concurrently. Please retry.")
	case errors.Is(err, userlock.ErrTimeout):
		response.Error(c, http.StatusServiceUnavailable, "lock_timeout", "Favorites are busy. Please retry.")
	default:
		h.log.Error("favorites request failed",
			zap.String("path", c.FullPath()), zap.Int64("user_id", currentUserID(c)), zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "internal_error", "Internal server error.")
	}
}

// favoriteID parses :id. A value that is not a positive integer can never
// name a favorite, so it is reported as not found.
func favoriteID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusNotFound, "not_found", "Favorite not found.")
		return 0, false
	}
	return id, true
}

func currentUserID(c *gin.Context) int64 {
	return c.GetInt64("user_id")
}
