package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestAPIKeyMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(APIKey("secret"))
	r.Any("/resource", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	tests := []struct {
		name     string
		method   string
		header   *string
		expected int
	}{
		{name: "valid", method: http.MethodGet, header: strPtr("secret"), expected: http.StatusOK},
		{name: "missing", method: http.MethodGet, expected: http.StatusUnauthorized},
		{name: "wrong", method: http.MethodPost, header: strPtr("wrong"), expected: http.StatusUnauthorized},
		{name: "prefix", method: http.MethodDelete, header: strPtr("secret2"), expected: http.StatusUnauthorized},
		{name: "casing", method: http.MethodPatch, header: strPtr("SECRET"), expected: http.StatusUnauthorized},
		{name: "empty", method: http.MethodPut, header: strPtr(""), expected: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, "/resource", nil)
			if tt.header != nil {
				req.Header.Set(APIKeyHeader, *tt.header)
			}
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expected, w.Code)
			if tt.expected == http.StatusUnauthorized {
				assert.JSONEq(t, `{"error":"unauthorized"}`, w.Body.String())
			}
		})
	}
}

func TestAPIKeyEmptySecretRejectsEverything(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(APIKey(""))
	r.GET("/resource", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/resource", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func strPtr(v string) *string {
	return &v
}
