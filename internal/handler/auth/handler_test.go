package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/dental-admin/internal/model"
	"github.com/jwalitptl/dental-admin/internal/service/activity"
	"github.com/jwalitptl/dental-admin/internal/service/auth"
	"github.com/jwalitptl/dental-admin/pkg/errors"
	"github.com/jwalitptl/dental-admin/pkg/httputil"
	"github.com/jwalitptl/dental-admin/pkg/session"
	"github.com/jwalitptl/dental-admin/pkg/validator"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type mockBackend struct {
	mock.Mock
}

func (m *mockBackend) Login(ctx context.Context, username, password string) (*model.BackendLoginResponse, error) {
	args := m.Called(ctx, username, password)
	if v := args.Get(0); v != nil {
		return v.(*model.BackendLoginResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func setupRouter(t *testing.T, b auth.Backend) (*gin.Engine, *session.Codec) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	codec, err := session.NewCodec(testSecret, session.Options{CookieName: "session"})
	require.NoError(t, err)

	svc := auth.NewService(b, codec, activity.Nop{}, zerolog.Nop())
	r := gin.New()
	NewHandler(svc, codec, validator.New(), nil).RegisterRoutes(r.Group("/api/v1"))
	return r, codec
}

func login(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func sessionCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestLoginSetsSessionCookie(t *testing.T) {
	b := new(mockBackend)
	b.On("Login", mock.Anything, "recepcion", "secret").Return(&model.BackendLoginResponse{
		Token: "backend-token", UUID: "u-1", Username: "recepcion",
	}, nil)
	r, codec := setupRouter(t, b)

	w := login(r, `{"username":"recepcion","password":"secret"}`)
	require.Equal(t, http.StatusOK, w.Code)

	cookie := sessionCookie(w, "session")
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, "/", cookie.Path)

	sess := codec.Decode(cookie.Value)
	require.NotNil(t, sess)
	assert.Equal(t, "u-1", sess.User.UUID)
	assert.Equal(t, "backend-token", sess.Token)

	var resp httputil.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Toast)
	assert.Equal(t, "Bienvenido, recepcion", resp.Toast.Title)
	b.AssertExpectations(t)
}

func TestLoginRejectedSetsNoCookie(t *testing.T) {
	b := new(mockBackend)
	b.On("Login", mock.Anything, "recepcion", "wrong").Return(nil, errors.Unauthorized("bad", nil))
	r, _ := setupRouter(t, b)

	w := login(r, `{"username":"recepcion","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Nil(t, sessionCookie(w, "session"))
	assert.Contains(t, w.Body.String(), auth.InvalidCredentials)
}

func TestLoginMissingFields(t *testing.T) {
	b := new(mockBackend)
	r, _ := setupRouter(t, b)

	w := login(r, `{"username":""}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	b.AssertNotCalled(t, "Login", mock.Anything, mock.Anything, mock.Anything)
}

func TestLogoutExpiresCookie(t *testing.T) {
	r, _ := setupRouter(t, new(mockBackend))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil))

	require.Equal(t, http.StatusOK, w.Code)
	cookie := sessionCookie(w, "session")
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.True(t, cookie.MaxAge < 0)
}
