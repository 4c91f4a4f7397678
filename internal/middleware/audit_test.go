package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/alumni-network-api/internal/models"
	"github.com/noah-isme/alumni-network-api/pkg/middleware/requestid"
)

type auditWriterStub struct{ entries []*models.AuditLog }

func (s *auditWriterStub) Create(_ context.Context, log *models.AuditLog) error {
	s.entries = append(s.entries, log)
	return nil
}

func TestAuditRecordsSuccessfulMutations(t *testing.T) {
	gin.SetMode(gin.TestMode)
	writer := &auditWriterStub{}
	r := gin.New()
	r.Use(requestid.Middleware())
	r.Use(func(c *gin.Context) {
		c.Set(ContextUserKey, &models.Principal{ExternalID: "user_admin"})
		c.Next()
	})
	r.PATCH("/accounts/:uid/verify", Audit(writer, nil, models.AuditActionVerify, "account", "uid"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.DELETE("/achievements/:id", Audit(writer, nil, models.AuditActionAchievementD, "achievement", "id"), func(c *gin.Context) {
		c.Status(http.StatusNotFound)
	})

	req := httptest.NewRequest(http.MethodPatch, "/accounts/21CS042/verify", nil)
	req.Header.Set(requestid.HeaderKey, "req-1")
	r.ServeHTTP(httptest.NewRecorder(), req)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/achievements/ach-1", nil))

	require.Len(t, writer.entries, 1, "failed requests are not audited")
	entry := writer.entries[0]
	assert.Equal(t, models.AuditActionVerify, entry.Action)
	assert.Equal(t, "user_admin", *entry.ActorID)
	assert.Equal(t, "21CS042", *entry.ResourceID)
	assert.Equal(t, "req-1", entry.RequestID)
	assert.Contains(t, string(entry.Details), `"path":"/accounts/:uid/verify"`)
}
