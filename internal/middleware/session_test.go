package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/alumni-network-api/internal/models"
	appErrors "github.com/noah-isme/alumni-network-api/pkg/errors"
)

type authenticatorStub struct {
	principals map[string]*models.Principal
}

func (a authenticatorStub) Authenticate(_ context.Context, token string) (*models.Principal, error) {
	if p, ok := a.principals[token]; ok {
		return p, nil
	}
	return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
}

func newSessionRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	admin := &models.Principal{ExternalID: "user_admin", Account: &models.Account{Role: models.RoleAdmin}}
	member := &models.Principal{ExternalID: "user_member"}
	auth := authenticatorStub{principals: map[string]*models.Principal{"admin-token": admin, "member-token": member}}

	r := gin.New()
	session := r.Group("/", Session(auth))
	session.GET("/me", func(c *gin.Context) {
		p, _ := CurrentPrincipal(c)
		c.String(http.StatusOK, p.ExternalID)
	})
	session.GET("/admin", RequireRoles(models.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func request(r *gin.Engine, path, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSession(t *testing.T) {
	r := newSessionRouter()

	assert.Equal(t, http.StatusUnauthorized, request(r, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, request(r, "/me", "Basic abc").Code)
	assert.Equal(t, http.StatusUnauthorized, request(r, "/me", "Bearer wrong").Code)

	w := request(r, "/me", "bearer member-token")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user_member", w.Body.String())
}

func TestRequireRoles(t *testing.T) {
	r := newSessionRouter()

	assert.Equal(t, http.StatusForbidden, request(r, "/admin", "Bearer member-token").Code)
	assert.Equal(t, http.StatusOK, request(r, "/admin", "Bearer admin-token").Code)
}

func TestRequireRolesWithoutSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin", RequireRoles(models.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusUnauthorized, request(r, "/admin", "").Code)
}
