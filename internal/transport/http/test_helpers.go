package http

import (
	stdhttp "net/http"
	"testing"
	"time"

	"github.com/smolyakov/huddle/internal/blob/memory"
	"github.com/smolyakov/huddle/internal/config"
	"github.com/smolyakov/huddle/internal/identity/local"
	logpkg "github.com/smolyakov/huddle/internal/log"
	"github.com/smolyakov/huddle/internal/service/files"
	"github.com/smolyakov/huddle/internal/store/sqlite"
)

// createTestServer wires a full server over in-memory backends.
func createTestServer(t *testing.T) *stdhttp.Server {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	filesSvc := files.New(st, memory.New())
	provider := local.New([]byte("test-secret"), "huddle", "huddle-client", time.Hour)

	cfg := config.Default()
	cfg.Addr = ":0"
	cfg.MaxUploadBytes = 1 << 20

	return NewServer(provider, filesSvc, &cfg, logpkg.Nop())
}
