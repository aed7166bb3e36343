package logger

import (
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"cluster_chat_server/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInitWritesFile(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.LogConfig{LogPath: dir, Level: "debug"}
	require.NoError(t, Init(cfg, "release"))
	t.Cleanup(func() { zap.ReplaceGlobals(zap.NewNop()) })

	zap.L().Info("hello", zap.Int64("user_id", 1))
	_ = zap.L().Sync()

	data, err := os.ReadFile(filepath.Join(dir, "chat.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"user_id":1`)
}

func TestInitRejectsBadLevel(t *testing.T) {
	cfg := &config.LogConfig{LogPath: t.TempDir(), Level: "loud"}
	assert.Error(t, Init(cfg, "release"))
	assert.Error(t, Init(nil, "release"))
}

func TestGinRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(GinLogger(), GinRecovery(true))
	engine.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestIsBrokenPipeError(t *testing.T) {
	opErr := &net.OpError{Op: "write", Err: os.NewSyscallError("write", syscall.EPIPE)}
	assert.True(t, isBrokenPipeError(opErr))
	assert.True(t, isBrokenPipeError(errors.New("read: connection reset by peer")))
	assert.False(t, isBrokenPipeError(errors.New("timeout")))
	assert.False(t, isBrokenPipeError(nil))
}
