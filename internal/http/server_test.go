package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/fyrsmithlabs/geoextract/internal/location"
	"github.com/fyrsmithlabs/geoextract/internal/logging"
	"github.com/fyrsmithlabs/geoextract/internal/pipeline"
)

func testPipeline(t *testing.T) *pipeline.Pipeline {
	t.Helper()
	opts, err := pipeline.DefaultConfig().Options(zap.NewNop())
	require.NoError(t, err)
	p, err := pipeline.New([]location.Location{
		{"name": "Rathaus", "city": "Musterstadt"},
		{"name": "Bahnhof"},
	}, opts)
	require.NoError(t, err)
	return p
}

func setupTestServer(t *testing.T, cfg *Config) *Server {
	t.Helper()
	server, err := NewServer(testPipeline(t), zap.NewNop(), cfg)
	require.NoError(t, err)
	return server
}

// multipartBody builds a form with the document in file field "text".
func multipartBody(t *testing.T, filename string, data []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	if data != nil {
		part, err := w.CreateFormFile("text", filename)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func extractRequest(t *testing.T, filename string, data []byte, fields map[string]string) *http.Request {
	t.Helper()
	body, contentType := multipartBody(t, filename, data, fields)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/extract", body)
	req.Header.Set("Content-Type", contentType)
	return req
}

func TestNewServer(t *testing.T) {
	t.Run("uses defaults when config is nil", func(t *testing.T) {
		server := setupTestServer(t, nil)
		assert.Equal(t, DefaultConfig(), server.config)
	})

	t.Run("returns error when extractor is nil", func(t *testing.T) {
		_, err := NewServer(nil, zap.NewNop(), nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "extractor cannot be nil")
	})

	t.Run("returns error when logger is nil", func(t *testing.T) {
		_, err := NewServer(testPipeline(t), nil, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "logger is required")
	})

	t.Run("rejects non-positive upload limit", func(t *testing.T) {
		_, err := NewServer(testPipeline(t), zap.NewNop(), &Config{})
		assert.Error(t, err)
	})
}

func TestHandleIndexAndHealth(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Version = "1.4.0"
	server := setupTestServer(t, cfg)

	rec := serve(server, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "GeoExtract 1.4.0", rec.Body.String())

	rec = serve(server, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestHandleExtract(t *testing.T) {
	server := setupTestServer(t, nil)

	tests := []struct {
		name   string
		req    func(t *testing.T) *http.Request
		status int
		want   string
	}{
		{
			name: "text upload",
			req: func(t *testing.T) *http.Request {
				return extractRequest(t, "brief.txt", []byte("Wir treffen uns am Rathaus."), nil)
			},
			status: http.StatusOK,
			want:   `[{"name":"Rathaus","city":"Musterstadt"}]`,
		},
		{
			name: "html upload",
			req: func(t *testing.T) *http.Request {
				return extractRequest(t, "page.html",
					[]byte("<html><head><title>Rathaus</title></head><body><p>Abfahrt am Bahnhof</p></body></html>"),
					map[string]string{"format": "html"})
			},
			status: http.StatusOK,
			want:   `[{"name":"Bahnhof"}]`,
		},
		{
			name: "nothing found",
			req: func(t *testing.T) *http.Request {
				return extractRequest(t, "empty.txt", []byte("Keine Orte hier."), nil)
			},
			status: http.StatusOK,
			want:   `[]`,
		},
		{
			name: "plain form value",
			req: func(t *testing.T) *http.Request {
				form := url.Values{"text": {"Rathaus"}}
				req := httptest.NewRequest(http.MethodPost, "/api/v1/extract", strings.NewReader(form.Encode()))
				req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
				return req
			},
			status: http.StatusOK,
			want:   `[{"name":"Rathaus","city":"Musterstadt"}]`,
		},
		{
			name: "missing text",
			req: func(t *testing.T) *http.Request {
				return extractRequest(t, "", nil, map[string]string{"format": "text"})
			},
			status: http.StatusBadRequest,
			want:   `{"message":"Missing \"text\" parameter."}`,
		},
		{
			name: "invalid utf-8",
			req: func(t *testing.T) *http.Request {
				return extractRequest(t, "latin1.txt", []byte("M\xfcnchen"), nil)
			},
			status: http.StatusBadRequest,
			want:   `{"message":"Decoding error. Data must be encoded as UTF-8."}`,
		},
		{
			name: "unknown format",
			req: func(t *testing.T) *http.Request {
				return extractRequest(t, "doc.pdf", []byte("Rathaus"), map[string]string{"format": "pdf"})
			},
			status: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(server, tt.req(t))
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.want != "" {
				assert.JSONEq(t, tt.want, rec.Body.String())
			}
			assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
		})
	}
}

func TestHandleExtract_TooLarge(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxUploadBytes = 64
	server := setupTestServer(t, cfg)

	rec := serve(server, extractRequest(t, "big.txt", bytes.Repeat([]byte("Rathaus "), 100), nil))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestHandleExtract_MethodNotAllowed(t *testing.T) {
	server := setupTestServer(t, nil)

	rec := serve(server, httptest.NewRequest(http.MethodGet, "/api/v1/extract", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	server := setupTestServer(t, nil)
	serve(server, extractRequest(t, "a.txt", []byte("Rathaus"), nil))

	rec := serve(server, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "geoextract_pipeline_documents_total")
}

func TestRateLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RateLimit = 1
	server := setupTestServer(t, cfg)

	first := serve(server, httptest.NewRequest(http.MethodGet, "/health", nil))
	second := serve(server, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestAccessLog(t *testing.T) {
	logs := logging.NewTestLogger()
	server, err := NewServer(testPipeline(t), logs.Underlying(), nil)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-Id", "client-req-7")
	serve(server, req)

	logs.AssertLogged(t, zapcore.InfoLevel, "http request")
	logs.AssertField(t, "http request", "request.id", "client-req-7")
	logs.AssertField(t, "http request", "status", int64(http.StatusOK))
}

func TestStartShutdown(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Port = 0
	server := setupTestServer(t, cfg)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()
	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, server.Shutdown(ctx))

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, http.ErrServerClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}
