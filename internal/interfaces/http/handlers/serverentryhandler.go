package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	serverentryusecases "mcprouter/internal/application/serverentry/usecases"
	"mcprouter/internal/domain/serverentry"
	"mcprouter/internal/interfaces/http/middleware"
	"mcprouter/internal/shared/logger"
	"mcprouter/internal/shared/utils"
)

// ServerEntryHandler handles the MCP server directory endpoints
type ServerEntryHandler struct {
	createEntry *serverentryusecases.CreateEntryUseCase
	listEntries *serverentryusecases.ListEntriesUseCase
	deleteEntry *serverentryusecases.DeleteEntryUseCase
	logger      logger.Interface
}

// NewServerEntryHandler creates a new server entry handler
func NewServerEntryHandler(
	createEntry *serverentryusecases.CreateEntryUseCase,
	listEntries *serverentryusecases.ListEntriesUseCase,
	deleteEntry *serverentryusecases.DeleteEntryUseCase,
	logger logger.Interface,
) *ServerEntryHandler {
	return &ServerEntryHandler{
		createEntry: createEntry,
		listEntries: listEntries,
		deleteEntry: deleteEntry,
		logger:      logger,
	}
}

type createEntryRequest struct {
	Name        string `json:"name" binding:"required"`
	EndpointURL string `json:"endpointUrl" binding:"required,url"`
	Description string `json:"description"`
}

type entryResponse struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	EndpointURL     string    `json:"endpointUrl"`
	Description     string    `json:"description,omitempty"`
	DescriptionHTML string    `json:"descriptionHtml,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

func toEntryResponse(e *serverentry.Entry) entryResponse {
	return entryResponse{
		ID:              e.SID(),
		Name:            e.Name(),
		EndpointURL:     e.EndpointURL(),
		Description:     e.Description(),
		DescriptionHTML: e.DescriptionHTML(),
		CreatedAt:       e.CreatedAt(),
	}
}

// Create handles POST /api/servers
func (h *ServerEntryHandler) Create(c *gin.Context) {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var req createEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.createEntry.Execute(c.Request.Context(), serverentryusecases.CreateEntryCommand{
		Name:        req.Name,
		EndpointURL: req.EndpointURL,
		Description: req.Description,
		OwnerID:     caller.ID(),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, toEntryResponse(result.Entry), "server entry created")
}

// List handles GET /api/servers
func (h *ServerEntryHandler) List(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	result, err := h.listEntries.Execute(c.Request.Context(), serverentryusecases.ListEntriesCommand{
		Cursor: c.Query("cursor"),
		Limit:  limit,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	entries := make([]entryResponse, len(result.Entries))
	for i, e := range result.Entries {
		entries[i] = toEntryResponse(e)
	}

	utils.SuccessResponse(c, http.StatusOK, "", gin.H{
		"servers":    entries,
		"hasMore":    result.HasMore,
		"nextCursor": result.NextCursor,
	})
}

// Delete handles DELETE /api/servers/:id
func (h *ServerEntryHandler) Delete(c *gin.Context) {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := h.deleteEntry.Execute(c.Request.Context(), serverentryusecases.DeleteEntryCommand{
		SID:     c.Param("id"),
		OwnerID: caller.ID(),
	}); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.NoContentResponse(c)
}
