package auth

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/campusdesk/import-service/internal/config"
	"github.com/campusdesk/import-service/internal/models"
	"github.com/campusdesk/import-service/internal/utils"
)

func newTestLogger() utils.Logger {
	return utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func probeRouter(middleware ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware...)
	router.GET("/probe", func(c *gin.Context) {
		user := c.MustGet("user").(*models.User)
		c.JSON(http.StatusOK, gin.H{"id": user.ID, "role": string(user.Role)})
	})
	return router
}

func TestMiddleware_AuthDisabled(t *testing.T) {
	a := NewAuthenticator(&config.Config{AuthEnabled: false}, newTestLogger())
	router := probeRouter(a.Middleware())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/probe", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "local-admin")
	assert.Contains(t, w.Body.String(), string(models.RoleAdmin))
}

func TestMiddleware_MissingToken(t *testing.T) {
	a := NewAuthenticator(&config.Config{
		AuthEnabled:     true,
		CasdoorEndpoint: "https://auth.example.edu",
	}, newTestLogger())
	router := probeRouter(a.Middleware())

	t.Run("no authorization header", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/probe", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed authorization header", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRequireImportPermission(t *testing.T) {
	asUser := func(user *models.User) gin.HandlerFunc {
		return func(c *gin.Context) {
			c.Set("user", user)
			c.Next()
		}
	}

	tests := []struct {
		name string
		role models.UserRole
		want int
	}{
		{"faculty may import", models.RoleFaculty, http.StatusOK},
		{"admin may import", models.RoleAdmin, http.StatusOK},
		{"student may not import", models.RoleStudent, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := probeRouter(asUser(&models.User{ID: "u-1", Role: tt.role}), RequireImportPermission())

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/probe", nil))

			assert.Equal(t, tt.want, w.Code)
		})
	}

	t.Run("unauthenticated request", func(t *testing.T) {
		gin.SetMode(gin.TestMode)
		router := gin.New()
		router.Use(RequireImportPermission())
		router.GET("/probe", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/probe", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestExtractBearerToken(t *testing.T) {
	newCtx := func(header string) *gin.Context {
		gin.SetMode(gin.TestMode)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			c.Request.Header.Set("Authorization", header)
		}
		return c
	}

	assert.Equal(t, "tok-1", extractBearerToken(newCtx("Bearer tok-1")))
	assert.Equal(t, "tok-2", extractBearerToken(newCtx("bearer tok-2")))
	assert.Equal(t, "", extractBearerToken(newCtx("")))
	assert.Equal(t, "", extractBearerToken(newCtx("Bearer")))
	assert.Equal(t, "", extractBearerToken(newCtx("Token tok-3")))
}

func TestRoleFromUser(t *testing.T) {
	tests := []struct {
		name string
		user casdoorsdk.User
		want models.UserRole
	}{
		{"admin flag wins", casdoorsdk.User{IsAdmin: true, Tag: "student"}, models.RoleAdmin},
		{"faculty tag", casdoorsdk.User{Tag: "Faculty"}, models.RoleFaculty},
		{"teacher tag", casdoorsdk.User{Tag: "teacher"}, models.RoleFaculty},
		{"staff tag", casdoorsdk.User{Tag: "staff"}, models.RoleFaculty},
		{"unknown tag", casdoorsdk.User{Tag: "alumni"}, models.RoleStudent},
		{"no tag", casdoorsdk.User{}, models.RoleStudent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, roleFromUser(&tt.user))
		})
	}
}
