package middlewares

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"careflow-service/internal/app/config"
	"careflow-service/internal/app/models"
	"careflow-service/internal/pkg/constvars"
	"careflow-service/internal/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSessionService struct {
	sessions map[string]string
}

func (f *fakeSessionService) GetSessionData(ctx context.Context, sessionID string) (string, error) {
	data, ok := f.sessions[sessionID]
	if !ok {
		return "", assert.AnError
	}
	return data, nil
}

func (f *fakeSessionService) ParseSessionData(ctx context.Context, sessionData string) (*models.ClinicianSession, error) {
	return nil, nil
}

func TestAuthenticate(t *testing.T) {
	secret := "test-secret"
	internalConfig := &config.InternalConfig{
		JWT: config.JWT{Secret: secret},
	}

	middlewares := NewMiddlewares(zap.NewNop(), &fakeSessionService{
		sessions: map[string]string{
			"session-1": `{"session_id":"session-1","clinician_uuid":"clinician-1"}`,
		},
	}, internalConfig)

	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionData, ok := r.Context().Value(constvars.CONTEXT_SESSION_DATA_KEY).(string)
		assert.True(t, ok, "session data should be set")
		assert.Contains(t, sessionData, "clinician-1")
		w.WriteHeader(http.StatusOK)
	})

	t.Run("Valid token resolves session", func(t *testing.T) {
		token, err := utils.GenerateSessionJWT("session-1", secret, 1)
		require.NoError(t, err)

		req := httptest.NewRequest("GET", "/api/v1/locations", nil)
		req.Header.Set(constvars.HeaderAuthorization, "Bearer "+token)

		rr := httptest.NewRecorder()
		middlewares.Authenticate(testHandler).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("Missing header is unauthorized", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/locations", nil)

		rr := httptest.NewRecorder()
		middlewares.Authenticate(testHandler).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("Garbage token is unauthorized", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/locations", nil)
		req.Header.Set(constvars.HeaderAuthorization, "Bearer not-a-token")

		rr := httptest.NewRecorder()
		middlewares.Authenticate(testHandler).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("Token signed with another secret is unauthorized", func(t *testing.T) {
		token, err := utils.GenerateSessionJWT("session-1", "other-secret", 1)
		require.NoError(t, err)

		req := httptest.NewRequest("GET", "/api/v1/locations", nil)
		req.Header.Set(constvars.HeaderAuthorization, "Bearer "+token)

		rr := httptest.NewRecorder()
		middlewares.Authenticate(testHandler).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("Unknown session is unauthorized", func(t *testing.T) {
		token, err := utils.GenerateSessionJWT("session-gone", secret, 1)
		require.NoError(t, err)

		req := httptest.NewRequest("GET", "/api/v1/locations", nil)
		req.Header.Set(constvars.HeaderAuthorization, "Bearer "+token)

		rr := httptest.NewRecorder()
		middlewares.Authenticate(testHandler).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestRequestIDMiddleware(t *testing.T) {
	middlewares := NewMiddlewares(zap.NewNop(), &fakeSessionService{}, &config.InternalConfig{})

	t.Run("Client request id is kept", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/locations", nil)
		req.Header.Set(constvars.HeaderRequestID, "client-supplied-id")

		var capturedContext context.Context
		rr := httptest.NewRecorder()
		middlewares.RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			capturedContext = r.Context()
			w.WriteHeader(http.StatusOK)
		})).ServeHTTP(rr, req)

		requestID, ok := capturedContext.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
		assert.True(t, ok)
		assert.Equal(t, "client-supplied-id", requestID)

		isClient, ok := capturedContext.Value(constvars.CONTEXT_IS_CLIENT_REQUEST_ID_KEY).(bool)
		assert.True(t, ok)
		assert.True(t, isClient)

		assert.Equal(t, "client-supplied-id", rr.Header().Get(constvars.HeaderRequestID))
	})

	t.Run("Missing request id is generated", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/locations", nil)

		var capturedContext context.Context
		rr := httptest.NewRecorder()
		middlewares.RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			capturedContext = r.Context()
			w.WriteHeader(http.StatusOK)
		})).ServeHTTP(rr, req)

		requestID, ok := capturedContext.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
		assert.True(t, ok)
		assert.NotEmpty(t, requestID)

		isClient, ok := capturedContext.Value(constvars.CONTEXT_IS_CLIENT_REQUEST_ID_KEY).(bool)
		assert.True(t, ok)
		assert.False(t, isClient)

		assert.Equal(t, requestID, rr.Header().Get(constvars.HeaderRequestID))
	})
}
