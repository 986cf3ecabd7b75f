package logger

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	apperrors "github.com/nexusmerchants/orderforms-stripe/pkg/errors"
)

func TestNewZapLogger_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portal.log")

	logger, err := NewZapLogger(Config{Level: "warn", Format: "json", Output: "file", FilePath: path})
	require.NoError(t, err)

	logger.Info("dropped")
	logger.Warn("kept", zap.String("user_id", "42"))
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "dropped")
	assert.Contains(t, string(data), `"message":"kept"`)
	assert.Contains(t, string(data), `"user_id":"42"`)
}

func TestMaskHeaders(t *testing.T) {
	masked := maskHeaders(map[string][]string{
		"Authorization":    {"Bearer eyJhbGciOiJIUzI1NiJ9.payload.signature"},
		"X-Internal-Token": {"short"},
		"Content-Type":     {"application/json"},
		"Empty":            {},
	})

	assert.Equal(t, "Bearer eyJ...ature", masked["Authorization"])
	assert.Equal(t, "[MASKED]", masked["X-Internal-Token"])
	assert.Equal(t, "application/json", masked["Content-Type"])
	assert.NotContains(t, masked, "Empty")
}

func TestWithEchoLogger_ErrorHandler(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	e := echo.New()
	WithEchoLogger(e, zap.New(core))

	e.GET("/provider", func(c echo.Context) error {
		return apperrors.NewAppError(apperrors.ErrProvider, "Your card was declined.", nil)
	})
	e.GET("/internal", func(c echo.Context) error {
		return errors.New("database is down")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/provider", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.JSONEq(t, `{"error": "Your card was declined."}`, rec.Body.String())
	assert.Zero(t, logs.Len())

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/internal", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error": "Internal Server Error"}`, rec.Body.String())
	assert.Equal(t, 1, logs.FilterMessage("HTTP error").Len())
}

func TestNewEchoRequestLogger_SkipsHealth(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	e := echo.New()
	e.Use(NewEchoRequestLogger(zap.New(core)))
	e.GET("/health", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/api", func(c echo.Context) error {
		c.Set("user_id", "42")
		return c.NoContent(http.StatusNotFound)
	})

	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api", nil))

	entries := logs.AllUntimed()
	require.Len(t, entries, 1)
	assert.Equal(t, "Client error", entries[0].Message)
	assert.Equal(t, "42", entries[0].ContextMap()["user_id"])
}
