package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/gearguard/gearguard/internal/auth"
	"github.com/gearguard/gearguard/internal/models"
)

func TestAuthMiddleware_Authenticate(t *testing.T) {
	authService, _ := auth.NewService()
	middleware := NewAuthMiddleware(authService)

	t.Run("valid token", func(t *testing.T) {
		user := &models.User{
			ID:    primitive.NewObjectID(),
			Name:  "Demo Manager",
			Email: "demo.manager@gearguard.com",
			Role:  models.RoleManager,
		}
		token, _ := authService.GenerateToken(user)

		req := httptest.NewRequest("GET", "/api/maintenance-requests", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		handlerCalled := false
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlerCalled = true
			claims, ok := GetUserFromContext(r.Context())
			assert.True(t, ok)
			assert.Equal(t, user.ID.Hex(), claims.UserID)
			assert.Equal(t, user.Role, claims.Role)
		})

		middleware.Authenticate(handler).ServeHTTP(w, req)
		assert.True(t, handlerCalled)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing authorization header", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/maintenance-requests", nil)
		w := httptest.NewRecorder()

		handlerCalled := false
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlerCalled = true
		})

		middleware.Authenticate(handler).ServeHTTP(w, req)
		assert.False(t, handlerCalled)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/maintenance-requests", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		w := httptest.NewRecorder()

		handlerCalled := false
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlerCalled = true
		})

		middleware.Authenticate(handler).ServeHTTP(w, req)
		assert.False(t, handlerCalled)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("skips auth for login", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/auth/login", nil)
		w := httptest.NewRecorder()

		handlerCalled := false
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlerCalled = true
		})

		middleware.Authenticate(handler).ServeHTTP(w, req)
		assert.True(t, handlerCalled)
	})

	t.Run("skips auth for health check", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/health", nil)
		w := httptest.NewRecorder()

		handlerCalled := false
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlerCalled = true
		})

		middleware.Authenticate(handler).ServeHTTP(w, req)
		assert.True(t, handlerCalled)
	})
}

func TestAuthMiddleware_RequireRole(t *testing.T) {
	authService, _ := auth.NewService()
	middleware := NewAuthMiddleware(authService)

	serve := func(claims *models.Claims, roles ...models.Role) (*httptest.ResponseRecorder, bool) {
		req := httptest.NewRequest("GET", "/api/assets", nil)
		if claims != nil {
			ctx := context.WithValue(req.Context(), UserContextKey, claims)
			req = req.WithContext(ctx)
		}
		w := httptest.NewRecorder()

		handlerCalled := false
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlerCalled = true
		})

		middleware.RequireRole(roles...)(handler).ServeHTTP(w, req)
		return w, handlerCalled
	}

	t.Run("allowed role passes", func(t *testing.T) {
		w, called := serve(&models.Claims{UserID: "u1", Role: models.RoleTechnician}, models.RoleTechnician)
		assert.True(t, called)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("manager always passes", func(t *testing.T) {
		w, called := serve(&models.Claims{UserID: "u1", Role: models.RoleManager}, models.RoleTechnician)
		assert.True(t, called)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("disallowed role is forbidden", func(t *testing.T) {
		w, called := serve(&models.Claims{UserID: "u1", Role: models.RoleEmployee}, models.RoleTechnician)
		assert.False(t, called)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("missing claims is unauthorized", func(t *testing.T) {
		w, called := serve(nil, models.RoleTechnician)
		assert.False(t, called)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
