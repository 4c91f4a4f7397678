package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	appErrors "github.com/noah-isme/alumni-network-api/pkg/errors"
)

func TestCacheRepositoryDisabledBehavesAsMiss(t *testing.T) {
	repo := NewCacheRepository(nil)
	ctx := context.Background()

	var dest map[string]string
	assert.ErrorIs(t, repo.Get(ctx, "alumni:list", &dest), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(ctx, "alumni:list", map[string]string{"a": "b"}, time.Minute))
	assert.NoError(t, repo.DeleteByPattern(ctx, "alumni:*"))
	assert.NoError(t, repo.Ping(ctx))
}
