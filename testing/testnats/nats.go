// Package testnats starts a NATS testcontainer for the events integration tests.
package testnats

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	image      = "nats:2.10-alpine"
	clientPort = "4222/tcp"
)

var (
	server     *Server
	serverOnce sync.Once
)

// Server is a running NATS container.
type Server struct {
	Container testcontainers.Container
	URL       string
}

// Start launches one NATS server per test binary. Short mode skips the test.
func Start(t *testing.T) *Server {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping NATS integration test in short mode")
	}

	serverOnce.Do(func() {
		ctx := context.Background()

		c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        image,
				ExposedPorts: []string{clientPort},
				WaitingFor:   wait.ForListeningPort(clientPort),
			},
			Started: true,
		})
		require.NoError(t, err)

		endpoint, err := c.PortEndpoint(ctx, clientPort, "nats")
		require.NoError(t, err)

		server = &Server{Container: c, URL: endpoint}
	})
	require.NotNil(t, server, "nats container failed to start")

	return server
}

func (s *Server) Terminate(t *testing.T) {
	t.Helper()
	if s.Container == nil {
		return
	}
	if err := s.Container.Terminate(context.Background()); err != nil {
		t.Logf("failed to terminate nats container: %s", err)
	}
}

// Subscribe delivers every message published under subject to the returned
// channel until the test ends. The subscription is flushed before returning.
func (s *Server) Subscribe(t *testing.T, subject string, buffer int) <-chan *nats.Msg {
	t.Helper()

	conn, err := nats.Connect(s.URL, nats.Name(fmt.Sprintf("test-%s", t.Name())))
	require.NoError(t, err)
	t.Cleanup(conn.Close)

	ch := make(chan *nats.Msg, buffer)
	_, err = conn.ChanSubscribe(subject, ch)
	require.NoError(t, err)
	require.NoError(t, conn.Flush())

	return ch
}
