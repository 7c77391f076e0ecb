package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apikeyusecases "mcprouter/internal/application/apikey/usecases"
	"mcprouter/internal/domain/apikey"
	"mcprouter/internal/interfaces/http/middleware"
	"mcprouter/internal/shared/logger"
	"mcprouter/internal/shared/utils"
)

// KeyHandler handles API key management endpoints
type KeyHandler struct {
	createKey *apikeyusecases.CreateKeyUseCase
	listKeys  *apikeyusecases.ListKeysUseCase
	deleteKey *apikeyusecases.DeleteKeyUseCase
	logger    logger.Interface
}

// NewKeyHandler creates a new key handler
func NewKeyHandler(
	createKey *apikeyusecases.CreateKeyUseCase,
	listKeys *apikeyusecases.ListKeysUseCase,
	deleteKey *apikeyusecases.DeleteKeyUseCase,
	logger logger.Interface,
) *KeyHandler {
	return &KeyHandler{
		createKey: createKey,
		listKeys:  listKeys,
		deleteKey: deleteKey,
		logger:    logger,
	}
}

type createKeyRequest struct {
	Name string `json:"name" binding:"required"`
	Type string `json:"type" binding:"required,oneof=user server"`
}

type keyResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
}

func toKeyResponse(k *apikey.Key) keyResponse {
	return keyResponse{
		ID:        k.SID(),
		Name:      k.Name(),
		Type:      string(k.Type()),
		CreatedAt: k.CreatedAt(),
	}
}

// Create handles POST /api/keys
func (h *KeyHandler) Create(c *gin.Context) {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var req createKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.createKey.Execute(c.Request.Context(), apikeyusecases.CreateKeyCommand{
		Name:    req.Name,
		Type:    req.Type,
		OwnerID: caller.ID(),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	// The raw secret is included in this response only and is not
	// retrievable afterwards
	utils.CreatedResponse(c, gin.H{
		"id":        result.Key.SID(),
		"name":      result.Key.Name(),
		"type":      string(result.Key.Type()),
		"key":       result.RawKey,
		"createdAt": result.Key.CreatedAt(),
	}, "API key created")
}

// List handles GET /api/keys
func (h *KeyHandler) List(c *gin.Context) {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "authentication required")
		return
	}

	keyType := c.DefaultQuery("type", string(apikey.KeyTypeUser))
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	result, err := h.listKeys.Execute(c.Request.Context(), apikeyusecases.ListKeysCommand{
		OwnerID: caller.ID(),
		Type:    keyType,
		Cursor:  c.Query("cursor"),
		Limit:   limit,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	keys := make([]keyResponse, len(result.Keys))
	for i, k := range result.Keys {
		keys[i] = toKeyResponse(k)
	}

	utils.SuccessResponse(c, http.StatusOK, "", gin.H{
		"keys":       keys,
		"hasMore":    result.HasMore,
		"nextCursor": result.NextCursor,
	})
}

// Delete handles DELETE /api/keys/:id
func (h *KeyHandler) Delete(c *gin.Context) {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := h.deleteKey.Execute(c.Request.Context(), apikeyusecases.DeleteKeyCommand{
		SID:     c.Param("id"),
		OwnerID: caller.ID(),
	}); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.NoContentResponse(c)
}
