package serverentry

import (
	"fmt"
	"time"

	"mcprouter/internal/shared/biztime"
)

// Entry is one published MCP server in the directory.
type Entry struct {
	id              uint
	sid             string // external API identifier (srv_xxx)
	name            string
	endpointURL     string
	description     string // markdown as submitted
	descriptionHTML string // sanitized render, stored alongside
	createdBy       uint
	createdAt       time.Time
	updatedAt       time.Time
}

// NewEntry creates a new directory entry.
func NewEntry(name, endpointURL, description, descriptionHTML string, createdBy uint, sidGenerator func() (string, error)) (*Entry, error) {
	if name == "" {
		return nil, fmt.Errorf("entry name is required")
	}
	if endpointURL == "" {
		return nil, fmt.Errorf("endpoint URL is required")
	}
	if createdBy == 0 {
		return nil, fmt.Errorf("entry owner is required")
	}

	sid, err := sidGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to generate SID: %w", err)
	}

	now := biztime.NowUTC()
	return &Entry{
		sid:             sid,
		name:            name,
		endpointURL:     endpointURL,
		description:     description,
		descriptionHTML: descriptionHTML,
		createdBy:       createdBy,
		createdAt:       now,
		updatedAt:       now,
	}, nil
}

// ReconstructEntry reconstructs an entry from persistence.
func ReconstructEntry(
	id uint,
	sid string,
	name string,
	endpointURL string,
	description string,
	descriptionHTML string,
	createdBy uint,
	createdAt time.Time,
	updatedAt time.Time,
) (*Entry, error) {
	if id == 0 {
		return nil, fmt.Errorf("entry ID cannot be zero")
	}
	if sid == "" {
		return nil, fmt.Errorf("entry SID is required")
	}

	return &Entry{
		id:              id,
		sid:             sid,
		name:            name,
		endpointURL:     endpointURL,
		description:     description,
		descriptionHTML: descriptionHTML,
		createdBy:       createdBy,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}, nil
}

// ID returns the internal ID.
func (e *Entry) ID() uint { return e.id }

// SID returns the external identifier (srv_xxx).
func (e *Entry) SID() string { return e.sid }

// Name returns the entry name.
func (e *Entry) Name() string { return e.name }

// EndpointURL returns the MCP endpoint URL.
func (e *Entry) EndpointURL() string { return e.endpointURL }

// Description returns the markdown description.
func (e *Entry) Description() string { return e.description }

// DescriptionHTML returns the sanitized HTML render of the description.
func (e *Entry) DescriptionHTML() string { return e.descriptionHTML }

// CreatedBy returns the owning user's internal ID.
func (e *Entry) CreatedBy() uint { return e.createdBy }

// CreatedAt returns when the entry was created.
func (e *Entry) CreatedAt() time.Time { return e.createdAt }

// UpdatedAt returns when the entry was last updated.
func (e *Entry) UpdatedAt() time.Time { return e.updatedAt }

// SetID sets the internal ID (only for persistence layer use).
func (e *Entry) SetID(id uint) error {
	if e.id != 0 {
		return fmt.Errorf("entry ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("entry ID cannot be zero")
	}
	e.id = id
	return nil
}
