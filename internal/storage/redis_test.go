package storage

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

var testRedisURL string

func TestMain(m *testing.M) {
	flag.Parse()

	// Skip container setup if running in short mode
	if testing.Short() {
		os.Exit(m.Run())
	}

	ctx := context.Background()
	container, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		// No Docker available: redis tests skip themselves
		fmt.Fprintf(os.Stderr, "redis container unavailable: %v\n", err)
		os.Exit(m.Run())
	}

	testRedisURL, err = container.ConnectionString(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to get redis endpoint: %v\n", err)
	}

	code := m.Run()
	if err := container.Terminate(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "failed to terminate redis container: %v\n", err)
	}
	os.Exit(code)
}

func setupRedisKV(t *testing.T) *RedisKV {
	t.Helper()
	if testRedisURL == "" {
		t.Skip("skipping redis integration test")
	}

	kv, err := NewRedisKV(context.Background(), testRedisURL, "test:"+t.Name()+":")
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })
	return kv
}

func TestRedisKV_SetGetRemove(t *testing.T) {
	ctx := context.Background()
	kv := setupRedisKV(t)

	_, ok, err := kv.GetItem(ctx, "ephemeral-sessions")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.SetItem(ctx, "ephemeral-sessions", `{"s1":{}}`))
	value, ok, err := kv.GetItem(ctx, "ephemeral-sessions")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"s1":{}}`, value)

	require.NoError(t, kv.RemoveItem(ctx, "ephemeral-sessions"))
	_, ok, err = kv.GetItem(ctx, "ephemeral-sessions")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisKV_PrefixIsolation(t *testing.T) {
	ctx := context.Background()
	a := setupRedisKV(t)
	b, err := NewRedisKV(ctx, testRedisURL, "other:"+t.Name()+":")
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, a.SetItem(ctx, "k", "from-a"))
	_, ok, err := b.GetItem(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewRedisKV_RequiresURL(t *testing.T) {
	_, err := NewRedisKV(context.Background(), "", "p:")
	assert.Error(t, err)
}

func TestIsOOM(t *testing.T) {
	assert.True(t, isOOM(errors.New("OOM command not allowed when used memory > 'maxmemory'.")))
	assert.False(t, isOOM(errors.New("connection refused")))
}
