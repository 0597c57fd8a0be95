package common

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	portalImage = "optimaxx-portal:test"
	portalPort  = "8080/tcp"
)

var (
	portalBuildOnce  sync.Once
	portalBuildError error
	portalContainer  *PortalContainer
	portalOnce       sync.Once
	portalStartErr   error
)

// PortalContainer wraps a running optimaxx-portal container.
type PortalContainer struct {
	portal testcontainers.Container
	cancel context.CancelFunc
	url    string
}

// URL returns the base URL of the running portal container.
func (p *PortalContainer) URL() string {
	return p.url
}

// CollectLogs saves the container output to dir/portal.log.
func (p *PortalContainer) CollectLogs(dir string) {
	if p == nil || p.portal == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	reader, err := p.portal.Logs(ctx)
	if err != nil {
		return
	}
	defer reader.Close()

	logs, err := io.ReadAll(reader)
	if err != nil {
		return
	}
	os.MkdirAll(dir, 0755)
	os.WriteFile(filepath.Join(dir, "portal.log"), logs, 0644)
}

// Cleanup terminates the container with a fresh context.
func (p *PortalContainer) Cleanup() {
	if p == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if p.portal != nil {
		p.portal.Terminate(ctx)
	}
	if p.cancel != nil {
		p.cancel()
	}
}

// buildPortalImage builds optimaxx-portal:test once per test run.
func buildPortalImage() error {
	portalBuildOnce.Do(func() {
		req := testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				FromDockerfile: testcontainers.FromDockerfile{
					Context:    FindProjectRoot(),
					Dockerfile: "tests/docker/Dockerfile.portal",
					Repo:       "optimaxx-portal",
					Tag:        "test",
					KeepImage:  true,
				},
			},
		}

		_, portalBuildError = testcontainers.GenericContainer(context.Background(), req)
		if portalBuildError != nil && strings.Contains(portalBuildError.Error(), portalImage) {
			portalBuildError = nil
		}
	})
	return portalBuildError
}

func startPortalContainer() (*PortalContainer, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 180*time.Second)

	env := map[string]string{
		"OPTIMAXX_ENV":         "dev",
		"OPTIMAXX_SERVER_HOST": "0.0.0.0",
		"OPTIMAXX_SERVER_PORT": "8080",
		"OPTIMAXX_LOG_LEVEL":   "info",
	}
	if schedule := os.Getenv("OPTIMAXX_TEST_WARM_SCHEDULE"); schedule != "" {
		env["OPTIMAXX_MARKET_WARM_SCHEDULE"] = schedule
	}

	ctr, err := testcontainers.Run(ctx, portalImage,
		testcontainers.WithExposedPorts(portalPort),
		testcontainers.WithEnv(env),
		testcontainers.WithWaitStrategy(
			wait.ForHTTP("/api/health").WithPort(portalPort).WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("start optimaxx-portal: %w", err)
	}

	host, err := ctr.Host(ctx)
	if err != nil {
		ctr.Terminate(ctx)
		cancel()
		return nil, fmt.Errorf("get portal host: %w", err)
	}
	mapped, err := ctr.MappedPort(ctx, portalPort)
	if err != nil {
		ctr.Terminate(ctx)
		cancel()
		return nil, fmt.Errorf("get portal mapped port: %w", err)
	}

	return &PortalContainer{
		portal: ctr,
		cancel: cancel,
		url:    fmt.Sprintf("http://%s:%s", host, mapped.Port()),
	}, nil
}

func startOnce() (*PortalContainer, error) {
	portalOnce.Do(func() {
		if err := buildPortalImage(); err != nil {
			portalStartErr = fmt.Errorf("build portal image: %w", err)
			return
		}
		portalContainer, portalStartErr = startPortalContainer()
		if portalStartErr == nil {
			os.Setenv("OPTIMAXX_TEST_URL", portalContainer.URL())
		}
	})
	return portalContainer, portalStartErr
}

// StartPortal starts the portal container (one per test process).
// Returns nil when OPTIMAXX_TEST_URL already points at a running portal.
func StartPortal(t *testing.T) *PortalContainer {
	t.Helper()
	if os.Getenv("OPTIMAXX_TEST_URL") != "" {
		return nil
	}
	p, err := startOnce()
	if err != nil {
		t.Fatalf("Failed to start test environment: %v", err)
	}
	return p
}

// StartPortalForTestMain is StartPortal for TestMain, where no *testing.T exists.
func StartPortalForTestMain() (*PortalContainer, error) {
	if os.Getenv("OPTIMAXX_TEST_URL") != "" {
		return nil, nil
	}
	return startOnce()
}

// FindProjectRoot walks up from the working directory to the directory holding go.mod.
func FindProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "."
		}
		dir = parent
	}
}
