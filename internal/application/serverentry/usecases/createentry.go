package usecases

import (
	"context"
	"fmt"
	"net/url"

	"mcprouter/internal/domain/serverentry"
	"mcprouter/internal/shared/errors"
	"mcprouter/internal/shared/id"
	"mcprouter/internal/shared/logger"
	"mcprouter/internal/shared/services/markdown"
)

// CreateEntryCommand represents the command to publish a directory entry
type CreateEntryCommand struct {
	Name        string
	EndpointURL string
	Description string
	OwnerID     uint
}

// CreateEntryResult represents the created entry
type CreateEntryResult struct {
	Entry *serverentry.Entry
}

// CreateEntryUseCase publishes an MCP server to the directory,
// rendering its markdown description to sanitized HTML up front
type CreateEntryUseCase struct {
	entryRepo serverentry.Repository
	renderer  markdown.Renderer
	logger    logger.Interface
}

// NewCreateEntryUseCase creates a new CreateEntryUseCase
func NewCreateEntryUseCase(entryRepo serverentry.Repository, renderer markdown.Renderer, logger logger.Interface) *CreateEntryUseCase {
	return &CreateEntryUseCase{
		entryRepo: entryRepo,
		renderer:  renderer,
		logger:    logger,
	}
}

// Execute creates the entry
func (uc *CreateEntryUseCase) Execute(ctx context.Context, cmd CreateEntryCommand) (*CreateEntryResult, error) {
	if cmd.Name == "" {
		return nil, errors.NewValidationError("entry name is required")
	}
	parsed, err := url.Parse(cmd.EndpointURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, errors.NewValidationError("endpoint URL must be absolute")
	}

	var descriptionHTML string
	if cmd.Description != "" {
		descriptionHTML, err = uc.renderer.Render(cmd.Description)
		if err != nil {
			uc.logger.Errorw("failed to render entry description", "error", err)
			return nil, fmt.Errorf("failed to render entry description: %w", err)
		}
	}

	entry, err := serverentry.NewEntry(cmd.Name, cmd.EndpointURL, cmd.Description, descriptionHTML, cmd.OwnerID, id.NewServerEntryID)
	if err != nil {
		return nil, fmt.Errorf("failed to create entry: %w", err)
	}

	if err := uc.entryRepo.Create(ctx, entry); err != nil {
		uc.logger.Errorw("failed to persist server entry", "error", err)
		return nil, fmt.Errorf("failed to persist server entry: %w", err)
	}

	uc.logger.Infow("server entry created", "sid", entry.SID(), "owner_id", cmd.OwnerID)

	return &CreateEntryResult{Entry: entry}, nil
}
