package usecases

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcprouter/internal/domain/serverentry"
	apperrors "mcprouter/internal/shared/errors"
	"mcprouter/internal/shared/logger"
	"mcprouter/internal/shared/services/markdown"
)

// fakeEntryRepo is an in-memory serverentry.Repository.
type fakeEntryRepo struct {
	entries []*serverentry.Entry
}

func (r *fakeEntryRepo) Create(ctx context.Context, e *serverentry.Entry) error {
	if e.ID() == 0 {
		if err := e.SetID(uint(len(r.entries) + 1)); err != nil {
			return err
		}
	}
	r.entries = append(r.entries, e)
	return nil
}

func (r *fakeEntryRepo) GetBySID(ctx context.Context, sid string) (*serverentry.Entry, error) {
	for _, e := range r.entries {
		if e.SID() == sid {
			return e, nil
		}
	}
	return nil, nil
}

func (r *fakeEntryRepo) List(ctx context.Context, before *time.Time, limit int) ([]*serverentry.Entry, error) {
	var matched []*serverentry.Entry
	for _, e := range r.entries {
		if before != nil && !e.CreatedAt().Before(*before) {
			continue
		}
		matched = append(matched, e)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt().After(matched[j].CreatedAt())
	})
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (r *fakeEntryRepo) DeleteBySID(ctx context.Context, sid string, ownerID uint) (bool, error) {
	for i, e := range r.entries {
		if e.SID() == sid && e.CreatedBy() == ownerID {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func TestCreateEntry_Success(t *testing.T) {
	repo := &fakeEntryRepo{}
	uc := NewCreateEntryUseCase(repo, markdown.NewRenderer(), logger.NewLogger())

	result, err := uc.Execute(context.Background(), CreateEntryCommand{
		Name:        "Weather Server",
		EndpointURL: "https://weather.example.com/mcp",
		Description: "Provides **weather** data.",
		OwnerID:     1,
	})
	require.NoError(t, err)

	entry := result.Entry
	assert.NotZero(t, entry.ID())
	assert.Equal(t, "Weather Server", entry.Name())
	assert.Equal(t, "Provides **weather** data.", entry.Description())
	assert.Contains(t, entry.DescriptionHTML(), "<strong>weather</strong>")
	assert.Len(t, repo.entries, 1)
}

func TestCreateEntry_SanitizesDescription(t *testing.T) {
	repo := &fakeEntryRepo{}
	uc := NewCreateEntryUseCase(repo, markdown.NewRenderer(), logger.NewLogger())

	result, err := uc.Execute(context.Background(), CreateEntryCommand{
		Name:        "Sketchy Server",
		EndpointURL: "https://sketchy.example.com/mcp",
		Description: "hello <script>alert(1)</script>",
		OwnerID:     1,
	})
	require.NoError(t, err)

	assert.NotContains(t, result.Entry.DescriptionHTML(), "<script>")
	assert.Contains(t, result.Entry.DescriptionHTML(), "hello")
}

func TestCreateEntry_RejectsRelativeURL(t *testing.T) {
	uc := NewCreateEntryUseCase(&fakeEntryRepo{}, markdown.NewRenderer(), logger.NewLogger())

	for _, endpoint := range []string{"", "/mcp", "weather.example.com", "://nope"} {
		_, err := uc.Execute(context.Background(), CreateEntryCommand{
			Name:        "Server",
			EndpointURL: endpoint,
			OwnerID:     1,
		})
		require.Error(t, err, "endpoint %q should be rejected", endpoint)
		appErr := apperrors.GetAppError(err)
		require.NotNil(t, appErr)
		assert.Equal(t, apperrors.ErrorTypeValidation, appErr.Type)
	}
}

func TestCreateEntry_RequiresName(t *testing.T) {
	uc := NewCreateEntryUseCase(&fakeEntryRepo{}, markdown.NewRenderer(), logger.NewLogger())

	_, err := uc.Execute(context.Background(), CreateEntryCommand{
		EndpointURL: "https://weather.example.com/mcp",
		OwnerID:     1,
	})
	assert.Error(t, err)
}
