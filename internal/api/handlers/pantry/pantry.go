package pantry

import (
	"context"
	"errors"
	"net/http"
	"time"

	pantryStore "chefmind/internal/core/pantry"
	"chefmind/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Store is the pantry persistence the handler needs.
type Store interface {
	List(ctx context.Context, userID string) ([]pantryStore.Item, time.Time, error)
	Add(ctx context.Context, userID string, items []pantryStore.Item) ([]pantryStore.Item, error)
	Update(ctx context.Context, userID string, item pantryStore.Item) ([]pantryStore.Item, error)
	Delete(ctx context.Context, userID, itemID string) ([]pantryStore.Item, error)
}

// Handler serves the per-user pantry endpoints. The user is identified by the
// userId query parameter on every method.
type Handler struct {
	store Store
}

// NewHandler creates a pantry handler.
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// AddRequest accepts either one item or a batch.
type AddRequest struct {
	Item  *pantryStore.Item  `json:"item"`
	Items []pantryStore.Item `json:"items"`
}

// UpdateRequest replaces one item's fields by id.
type UpdateRequest struct {
	Item pantryStore.Item `json:"item"`
}

// DeleteRequest removes one item by id.
type DeleteRequest struct {
	ItemID string `json:"itemId"`
}

func userID(c *gin.Context) (string, bool) {
	id := c.Query("userId")
	if id == "" {
		c.JSON(http.StatusBadRequest, common.ErrorResponse{Error: "userId is required"})
		return "", false
	}
	return id, true
}

func (h *Handler) respondError(c *gin.Context, user string, err error) {
	if errors.Is(err, common.ErrStoreUnavailable) {
		c.JSON(http.StatusServiceUnavailable, common.ErrorResponse{Error: "Pantry storage is not available"})
		return
	}
	var custom *common.CustomError
	if errors.As(err, &custom) && custom.Status == http.StatusNotFound {
		c.JSON(http.StatusNotFound, common.ErrorResponse{Error: "Pantry item not found"})
		return
	}
	common.LogError("pantry operation failed",
		zap.String("user_id", user),
		zap.Error(err),
	)
	c.JSON(http.StatusInternalServerError, common.ErrorResponse{
		Error:   "Pantry operation failed",
		Details: err.Error(),
	})
}

// HandleList returns the user's pantry and its last modification time.
func (h *Handler) HandleList(c *gin.Context) {
	user, ok := userID(c)
	if !ok {
		return
	}

	items, lastUpdated, err := h.store.List(c.Request.Context(), user)
	if err != nil {
		h.respondError(c, user, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"pantry":      items,
		"lastUpdated": lastUpdated,
	})
}

// HandleAdd inserts one or more items with set semantics.
func (h *Handler) HandleAdd(c *gin.Context) {
	user, ok := userID(c)
	if !ok {
		return
	}

	var req AddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.ErrorResponse{Error: "Invalid request format"})
		return
	}

	items := req.Items
	if req.Item != nil {
		items = append(items, *req.Item)
	}
	if len(items) == 0 {
		c.JSON(http.StatusBadRequest, common.ErrorResponse{Error: "At least one item is required"})
		return
	}

	updated, err := h.store.Add(c.Request.Context(), user, items)
	if err != nil {
		h.respondError(c, user, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": updated})
}

// HandleUpdate replaces an item's fields by id.
func (h *Handler) HandleUpdate(c *gin.Context) {
	user, ok := userID(c)
	if !ok {
		return
	}

	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Item.ID == "" {
		c.JSON(http.StatusBadRequest, common.ErrorResponse{Error: "Item with id is required"})
		return
	}

	updated, err := h.store.Update(c.Request.Context(), user, req.Item)
	if err != nil {
		h.respondError(c, user, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": updated})
}

// HandleDelete removes an item by id.
func (h *Handler) HandleDelete(c *gin.Context) {
	user, ok := userID(c)
	if !ok {
		return
	}

	var req DeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ItemID == "" {
		c.JSON(http.StatusBadRequest, common.ErrorResponse{Error: "itemId is required"})
		return
	}

	updated, err := h.store.Delete(c.Request.Context(), user, req.ItemID)
	if err != nil {
		h.respondError(c, user, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": updated})
}
