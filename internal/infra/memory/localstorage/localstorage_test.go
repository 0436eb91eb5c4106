package infra_memory_localstorage

import (
	"context"
	"testing"

	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MemoryStorageSuite struct {
	suite.Suite
}

func (s *MemoryStorageSuite) TestRoundTrip(t provider.T) {
	ctx := context.Background()
	d := New()

	require.NoError(t, d.Set(ctx, "a", map[string]string{"isLoggedIn": "true", "userEmail": "x@y.z"}))
	require.NoError(t, d.Set(ctx, "b", map[string]string{"isLoggedIn": "false"}))

	v, ok, err := d.Get(ctx, "a", "userEmail")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "x@y.z", v)

	_, ok, _ = d.Get(ctx, "b", "userEmail")
	assert.False(t, ok, "clients must not see each other's keys")

	require.NoError(t, d.Delete(ctx, "a", "isLoggedIn", "userEmail", "missing"))
	_, ok, _ = d.Get(ctx, "a", "isLoggedIn")
	assert.False(t, ok)

	assert.NoError(t, d.Delete(ctx, "nobody", "isLoggedIn"))
}

func TestMemoryStorageSuite(t *testing.T) {
	suite.RunSuite(t, new(MemoryStorageSuite))
}
