package api_test

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"urlextract/internal/api"
	"urlextract/internal/api/handler/v1handler"
	"urlextract/internal/extractor"
	"urlextract/pkg/controller"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T, deps api.Deps, opts api.Options) http.Handler {
	t.Helper()

	ext, err := extractor.New(extractor.Options{MaxTextLength: 280}, extractor.Deps{})
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	deps.Extractor = ext
	deps.Registerer = reg
	deps.Gatherer = reg

	if opts.MetricsPath == "" {
		opts.MetricsPath = "/metrics"
	}
	if opts.CORSOrigins == nil {
		opts.CORSOrigins = []string{"*"}
	}

	h, err := api.NewHandler(deps, opts)
	require.NoError(t, err)

	return h
}

func do(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func extractRequest(text string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/v1/extract", strings.NewReader(`{"text":"`+text+`"}`))
	req.Header.Set("Content-Type", "application/json")

	return req
}

func TestServer_Extract(t *testing.T) {
	h := newTestHandler(t, api.Deps{}, api.Options{RequestTimeout: time.Second})

	rec := do(h, extractRequest("see example.com and http://t.co, not t.co"))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Header().Get("X-Request-Id"))
	require.JSONEq(t, `{
		"urls":[
			{"url":"example.com","start":4,"end":15,"hasProtocol":false},
			{"url":"http://t.co","start":20,"end":31,"hasProtocol":true}
		],
		"candidates":3,
		"rejected":1
	}`, rec.Body.String())

	metricsRec := do(h, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, metricsRec.Code)
	require.Contains(t, metricsRec.Body.String(), `urlextract_http_request_duration_seconds_count{code="200",method="POST",route="/v1/extract"} 1`)
}

func TestServer_TextTooLong(t *testing.T) {
	h := newTestHandler(t, api.Deps{}, api.Options{})

	rec := do(h, extractRequest(strings.Repeat("a", 281)))
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	require.Contains(t, rec.Body.String(), `"code":"PAYLOAD_TOO_LARGE"`)
}

func TestServer_NotFoundAndDocs(t *testing.T) {
	h := newTestHandler(t, api.Deps{}, api.Options{})

	rec := do(h, httptest.NewRequest(http.MethodGet, "/v1/nothing", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.JSONEq(t, `{"code":"NOT_FOUND","message":"resource not found"}`, rec.Body.String())

	rec = do(h, httptest.NewRequest(http.MethodGet, "/v1/extract", nil))
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	require.Contains(t, rec.Body.String(), `"code":"METHOD_NOT_ALLOWED"`)

	rec = do(h, httptest.NewRequest(http.MethodGet, "/specs/v1.yaml", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "/extract/batch:")

	rec = do(h, httptest.NewRequest(http.MethodGet, "/v1/docs/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(h, httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil))
	require.Equal(t, http.StatusNotFound, rec.Code, "pprof is disabled by default")
}

func TestServer_Pprof(t *testing.T) {
	h := newTestHandler(t, api.Deps{}, api.Options{EnablePprof: true})

	rec := do(h, httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_CORSPreflight(t *testing.T) {
	h := newTestHandler(t, api.Deps{}, api.Options{})

	req := httptest.NewRequest(http.MethodOptions, "/v1/extract", nil)
	req.Header.Set("Origin", "https://example.com")
	rec := do(h, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_RateLimit(t *testing.T) {
	h := newTestHandler(t, api.Deps{Limiter: controller.NewClientLimiter(0.001, 1)}, api.Options{})

	require.Equal(t, http.StatusOK, do(h, extractRequest("a.com")).Code)

	rec := do(h, extractRequest("a.com"))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "1", rec.Header().Get("Retry-After"))
	require.Contains(t, rec.Body.String(), `"code":"RATE_LIMITED"`)

	// the limiter only guards the API
	require.Equal(t, http.StatusOK, do(h, httptest.NewRequest(http.MethodGet, "/metrics", nil)).Code)
}

func TestServer_BearerAuth(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	pubASN1, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	require.NoError(t, err)
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubASN1})

	h := newTestHandler(t, api.Deps{}, api.Options{
		SecHandlerOptions: &v1handler.SecHandlerOptions{PublicKey: string(pubPEM)},
	})

	rec := do(h, extractRequest("a.com"))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	now := time.Now()
	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.RegisteredClaims{
		Subject:   uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}).SignedString(priv)
	require.NoError(t, err)

	req := extractRequest("a.com")
	req.Header.Set("Authorization", "Bearer "+token)
	rec = do(h, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"url":"a.com"`)

	// docs stay public
	require.Equal(t, http.StatusOK, do(h, httptest.NewRequest(http.MethodGet, "/specs/v1.yaml", nil)).Code)
}

func TestNewServer_InvalidPublicKey(t *testing.T) {
	_, err := api.NewServer(api.Deps{Registerer: prometheus.NewRegistry()}, api.Options{
		SecHandlerOptions: &v1handler.SecHandlerOptions{PublicKey: "garbage"},
	})
	require.Error(t, err)
}
