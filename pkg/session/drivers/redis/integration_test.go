package redis

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/aussiebroadwan/imeet/pkg/session"
	"github.com/aussiebroadwan/imeet/pkg/session/storetest"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestIntegrationRealRedis runs the conformance suite against a real redis
// container. Requires Docker; opt in with IMEET_INTEGRATION=1.
func TestIntegrationRealRedis(t *testing.T) {
	if testing.Short() || os.Getenv("IMEET_INTEGRATION") != "1" {
		t.Skip("set IMEET_INTEGRATION=1 to run container tests")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)
	addr := fmt.Sprintf("%s:%s", host, port.Port())

	n := 0
	storetest.Run(t, func(t *testing.T) session.Store {
		n++
		rdb := redis.NewClient(&redis.Options{Addr: addr})
		s := NewStore(rdb, fmt.Sprintf("it-%d", n), 0)
		require.NoError(t, s.Ping(ctx))
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}
