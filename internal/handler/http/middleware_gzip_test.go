package http

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- Helpers ----

func gzipCompress(t *testing.T, data string) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	_, err := gw.Write([]byte(data))
	require.NoError(t, err)
	require.NoError(t, gw.Close())
	return &buf
}

func gzipDecompress(t *testing.T, data []byte) string {
	t.Helper()

	gr, err := gzip.NewReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = gr.Close() }()

	plain, err := io.ReadAll(gr)
	require.NoError(t, err)
	return string(plain)
}

// echoHandler отдаёт тело запроса обратно в ответ.
var echoHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
})

// ---- Response compression ----

func TestWithGZip_CompressesResponseWhenAccepted(t *testing.T) {
	const payload = `[{"id":"srv-1","title":"Buy milk"}]`

	handler := withGZip(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(payload))
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "gzip", rr.Header().Get("Content-Encoding"))
	assert.Equal(t, payload, gzipDecompress(t, rr.Body.Bytes()))
}

func TestWithGZip_NoCompressionWithoutAcceptEncoding(t *testing.T) {
	const payload = `{"id":"srv-1"}`

	handler := withGZip(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(payload))
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, rr.Header().Get("Content-Encoding"))
	assert.Equal(t, payload, rr.Body.String())
}

// ---- Request decompression ----

func TestWithGZip_DecompressesGzippedRequestBody(t *testing.T) {
	const payload = `{"title":"Buy milk"}`

	handler := withGZip(echoHandler)

	req := httptest.NewRequest(http.MethodPost, "/api/tasks", gzipCompress(t, payload))
	req.Header.Set("Content-Encoding", "gzip")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, payload, rr.Body.String())
}

func TestWithGZip_InvalidGzipBodyIsRejected(t *testing.T) {
	handler := withGZip(echoHandler)

	req := httptest.NewRequest(http.MethodPost, "/api/tasks", strings.NewReader("definitely not gzip"))
	req.Header.Set("Content-Encoding", "gzip")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

// ---- Round trip: gzip запрос + gzip ответ ----

func TestWithGZip_FullRoundTrip(t *testing.T) {
	const payload = `{"title":"Buy milk","completed":false}`

	handler := withGZip(echoHandler)

	req := httptest.NewRequest(http.MethodPost, "/api/tasks", gzipCompress(t, payload))
	req.Header.Set("Content-Encoding", "gzip")
	req.Header.Set("Accept-Encoding", "gzip")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "gzip", rr.Header().Get("Content-Encoding"))
	assert.Equal(t, payload, gzipDecompress(t, rr.Body.Bytes()))
}

// Пул writer-ов должен переживать последовательные запросы без порчи данных.
func TestWithGZip_SequentialRequestsReusePool(t *testing.T) {
	handler := withGZip(echoHandler)

	for i := 0; i < 20; i++ {
		payload := strings.Repeat("task-", i+1)

		req := httptest.NewRequest(http.MethodPost, "/api/tasks", strings.NewReader(payload))
		req.Header.Set("Accept-Encoding", "gzip")
		rr := httptest.NewRecorder()

		handler.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		require.Equal(t, payload, gzipDecompress(t, rr.Body.Bytes()))
	}
}
