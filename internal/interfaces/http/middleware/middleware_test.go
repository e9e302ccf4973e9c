package middleware

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tourassist/backend/internal/infrastructure/log"
)

func echoRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLogger(), EnsureUTF8Body())
	r.POST("/echo", func(c *gin.Context) {
		body, _ := io.ReadAll(c.Request.Body)
		c.Header("X-Seen-Request-ID", log.RequestIDFromContext(c.Request.Context()))
		c.Data(http.StatusOK, "text/plain", body)
	})
	return r
}

func TestEnsureUTF8Body(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        []byte
		want        []byte
	}{
		{"valid utf-8 untouched", "application/json", []byte(`{"user_message":"café"}`), []byte(`{"user_message":"café"}`)},
		{"latin-1 converted", "application/json", []byte("{\"user_message\":\"caf\xe9\"}"), []byte(`{"user_message":"café"}`)},
		{"non-json untouched", "text/plain", []byte("caf\xe9"), []byte("caf\xe9")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/echo", bytes.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.contentType)
			w := httptest.NewRecorder()

			echoRouter().ServeHTTP(w, req)

			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.want, w.Body.Bytes())
		})
	}
}

func TestRequestLogger_RequestID(t *testing.T) {
	r := echoRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", nil))
	generated := w.Header().Get(RequestIDHeader)
	assert.NotEmpty(t, generated)
	assert.Equal(t, generated, w.Header().Get("X-Seen-Request-ID"))

	req := httptest.NewRequest(http.MethodPost, "/echo", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "req-123", w.Header().Get("X-Seen-Request-ID"))
}
