package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"xrpl-wallet/internal/core/ports"
	"xrpl-wallet/internal/core/ports/mocks"
	"xrpl-wallet/internal/metrics"
	"xrpl-wallet/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestJWTAuth_MissingHeader(t *testing.T) {
	ctrl := gomock.NewController(t)
	tokenSvc := mocks.NewMockTokenService(ctrl)

	router := gin.New()
	router.GET("/test", JWTAuth(tokenSvc, zerolog.Nop()), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	for _, header := range []string{"", "Bearer ", "Basic abc", "bearer token"} {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code, "header %q", header)
		assert.Contains(t, w.Body.String(), "AUTH_001")
	}
}

func TestJWTAuth_InvalidToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	tokenSvc := mocks.NewMockTokenService(ctrl)
	tokenSvc.EXPECT().Validate("expired.jwt").Return(nil, errors.New("token is expired"))

	router := gin.New()
	router.GET("/test", JWTAuth(tokenSvc, zerolog.Nop()), func(c *gin.Context) {
		t.Fatal("handler must not run")
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer expired.jwt")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuth_SetsSubject(t *testing.T) {
	ctrl := gomock.NewController(t)
	tokenSvc := mocks.NewMockTokenService(ctrl)
	tokenSvc.EXPECT().Validate("good.jwt").Return(&ports.TokenClaims{Subject: "ops"}, nil)

	router := gin.New()
	router.GET("/test", JWTAuth(tokenSvc, zerolog.Nop()), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(CtxSubject))
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer good.jwt")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ops", w.Body.String())
}

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/test", func(c *gin.Context) {
		response.OK(c, nil)
	})

	t.Run("propagates client id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(HeaderRequestID, "req-abc")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "req-abc", w.Header().Get(HeaderRequestID))
		var resp response.SuccessResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "req-abc", resp.RequestID)
	})

	t.Run("generates when missing or oversized", func(t *testing.T) {
		for _, id := range []string{"", strings.Repeat("x", 65)} {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if id != "" {
				req.Header.Set(HeaderRequestID, id)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			got := w.Header().Get(HeaderRequestID)
			assert.NotEmpty(t, got)
			assert.NotEqual(t, id, got)
		}
	})
}

func TestMetrics_CountsByRouteTemplate(t *testing.T) {
	m := metrics.New()

	router := gin.New()
	router.Use(Metrics(m))
	router.GET("/api/v1/tx/:hash", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	for _, path := range []string{"/api/v1/tx/AA", "/api/v1/tx/BB", "/nope"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	}

	expected := `
# HELP xrplw_http_requests_total HTTP API requests
# TYPE xrplw_http_requests_total counter
xrplw_http_requests_total{method="GET",path="/api/v1/tx/:hash",status="204"} 2
xrplw_http_requests_total{method="GET",path="unmatched",status="404"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "xrplw_http_requests_total"))
}

func TestRequestLogger_LevelFollowsStatus(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	router := gin.New()
	router.Use(RequestID(), RequestLogger(log))
	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	router.GET("/boom", func(c *gin.Context) { c.Status(http.StatusBadGateway) })

	levels := map[string]string{"/ok": "info", "/bad": "warn", "/boom": "error"}
	for path, level := range levels {
		buf.Reset()
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))

		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), path)
		assert.Equal(t, level, entry["level"], path)
		assert.Equal(t, path, entry["path"])
		assert.NotEmpty(t, entry["request_id"])
	}
}

func TestRecovery(t *testing.T) {
	router := gin.New()
	router.Use(Recovery(zerolog.Nop()))
	router.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "SYS_001")
}

func TestMaxBodySize(t *testing.T) {
	type body struct {
		Destination string `json:"destination"`
	}
	router := gin.New()
	router.Use(MaxBodySize(64))
	router.POST("/test", func(c *gin.Context) {
		var b body
		if err := c.ShouldBindJSON(&b); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		c.String(http.StatusOK, b.Destination)
	})

	small := `{"destination":"rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh"}`
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(small)))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh", w.Body.String())

	big := `{"destination":"` + strings.Repeat("r", 100) + `"}`
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(big)))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	router.GET("/get", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/get", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
