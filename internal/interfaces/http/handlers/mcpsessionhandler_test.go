package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	apikeyusecases "mcprouter/internal/application/apikey/usecases"
	"mcprouter/internal/domain/apikey"
	"mcprouter/internal/domain/user"
	"mcprouter/internal/infrastructure/persistence/models"
	"mcprouter/internal/infrastructure/repository"
	"mcprouter/internal/shared/logger"
)

type sessionTestEnv struct {
	engine   *gin.Engine
	userRepo user.Repository
	keyRepo  apikey.Repository
}

func setupSessionTest(t *testing.T) *sessionTestEnv {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.UserModel{}, &models.APIKeyModel{}))

	log := logger.NewLogger()
	userRepo := repository.NewUserRepository(db, log)
	keyRepo := repository.NewAPIKeyRepository(db, log)

	handler := NewMCPSessionHandler(
		apikeyusecases.NewResolveSessionUseCase(keyRepo, userRepo, log),
		log,
	)

	engine := gin.New()
	engine.POST("/api/auth/mcp/session", handler.Resolve)

	return &sessionTestEnv{engine: engine, userRepo: userRepo, keyRepo: keyRepo}
}

func (env *sessionTestEnv) createUser(t *testing.T, email string, verified bool) *user.User {
	t.Helper()
	u, err := user.NewUser(email, "", func() (string, error) { return "usr_" + email, nil })
	require.NoError(t, err)
	if verified {
		require.NoError(t, u.MarkEmailVerified())
	}
	require.NoError(t, env.userRepo.Create(context.Background(), u))
	return u
}

func (env *sessionTestEnv) createKey(t *testing.T, name string, keyType apikey.KeyType, ownerID uint) string {
	t.Helper()
	key, raw, err := apikey.NewKey(name, keyType, ownerID, func() (string, error) {
		return fmt.Sprintf("key_%s_%s", keyType, name), nil
	})
	require.NoError(t, err)
	require.NoError(t, env.keyRepo.Create(context.Background(), key))
	return raw
}

func (env *sessionTestEnv) resolve(t *testing.T, serverKey string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/mcp/session", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if serverKey != "" {
		req.Header.Set("x-api-key", serverKey)
	}
	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)
	return w
}

func TestMCPSession_MissingServerKeyHeader(t *testing.T) {
	env := setupSessionTest(t)

	w := env.resolve(t, "", []byte(`{"userKey":"whatever"}`))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Server key is required in x-api-key header"}`, w.Body.String())
}

func TestMCPSession_InvalidBody(t *testing.T) {
	env := setupSessionTest(t)
	caller := env.createUser(t, "caller@example.com", true)
	rawServer := env.createKey(t, "service", apikey.KeyTypeServer, caller.ID())

	// Missing userKey field
	w := env.resolve(t, rawServer, []byte(`{}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Error   string   `json:"error"`
		Details []string `json:"details"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Invalid request body", resp.Error)
	assert.NotEmpty(t, resp.Details)

	// Malformed JSON
	w = env.resolve(t, rawServer, []byte(`{not json`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Invalid request body", resp.Error)
	assert.NotEmpty(t, resp.Details)
}

func TestMCPSession_InvalidServerKey(t *testing.T) {
	env := setupSessionTest(t)

	w := env.resolve(t, "bogus-server-key", []byte(`{"userKey":"whatever"}`))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Invalid server key"}`, w.Body.String())
}

func TestMCPSession_UserKeyInServerPosition(t *testing.T) {
	env := setupSessionTest(t)
	owner := env.createUser(t, "owner@example.com", true)
	rawUser := env.createKey(t, "laptop", apikey.KeyTypeUser, owner.ID())

	// A valid user key never authenticates as a server key
	w := env.resolve(t, rawUser, []byte(fmt.Sprintf(`{"userKey":%q}`, rawUser)))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Invalid server key"}`, w.Body.String())
}

func TestMCPSession_InvalidUserKey(t *testing.T) {
	env := setupSessionTest(t)
	caller := env.createUser(t, "caller@example.com", true)
	rawServer := env.createKey(t, "service", apikey.KeyTypeServer, caller.ID())

	w := env.resolve(t, rawServer, []byte(`{"userKey":"bogus"}`))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Invalid user key"}`, w.Body.String())

	// A server key in the body is still an invalid user key
	w = env.resolve(t, rawServer, []byte(fmt.Sprintf(`{"userKey":%q}`, rawServer)))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Invalid user key"}`, w.Body.String())
}

func TestMCPSession_UserNotFound(t *testing.T) {
	env := setupSessionTest(t)
	caller := env.createUser(t, "caller@example.com", true)

	rawServer := env.createKey(t, "service", apikey.KeyTypeServer, caller.ID())
	rawOrphan := env.createKey(t, "orphan", apikey.KeyTypeUser, 999)

	w := env.resolve(t, rawServer, []byte(fmt.Sprintf(`{"userKey":%q}`, rawOrphan)))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"User not found"}`, w.Body.String())
}

func TestMCPSession_Success(t *testing.T) {
	env := setupSessionTest(t)
	caller := env.createUser(t, "caller@example.com", true)
	owner := env.createUser(t, "owner@example.com", true)

	rawServer := env.createKey(t, "service", apikey.KeyTypeServer, caller.ID())
	rawUser := env.createKey(t, "laptop", apikey.KeyTypeUser, owner.ID())

	// Cross-tenant on purpose: the two keys belong to different users
	w := env.resolve(t, rawServer, []byte(fmt.Sprintf(`{"userKey":%q}`, rawUser)))

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		User struct {
			ID            string  `json:"id"`
			Name          string  `json:"name"`
			Email         string  `json:"email"`
			Role          string  `json:"role"`
			EmailVerified *string `json:"emailVerified"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, owner.SID(), resp.User.ID)
	assert.Equal(t, "owner@example.com", resp.User.Email)
	assert.Equal(t, "user", resp.User.Role)
	require.NotNil(t, resp.User.EmailVerified)

	ts, err := time.Parse(time.RFC3339, *resp.User.EmailVerified)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC(), ts, time.Minute)
}

func TestMCPSession_UnverifiedUserHasNullEmailVerified(t *testing.T) {
	env := setupSessionTest(t)
	caller := env.createUser(t, "caller@example.com", true)
	owner := env.createUser(t, "owner@example.com", false)

	rawServer := env.createKey(t, "service", apikey.KeyTypeServer, caller.ID())
	rawUser := env.createKey(t, "laptop", apikey.KeyTypeUser, owner.ID())

	w := env.resolve(t, rawServer, []byte(fmt.Sprintf(`{"userKey":%q}`, rawUser)))

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "null", string(resp["user"]["emailVerified"]))
}
