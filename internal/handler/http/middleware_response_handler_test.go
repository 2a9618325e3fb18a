// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newResponseWriter() (*responseWriter, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	return &responseWriter{ResponseWriter: rec}, rec
}

func TestResponseWriter_WriteHeaderRecordsStatus(t *testing.T) {
	rw, rec := newResponseWriter()

	rw.WriteHeader(http.StatusCreated)

	assert.Equal(t, http.StatusCreated, rw.status)
	assert.True(t, rw.wroteHeader)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestResponseWriter_SecondWriteHeaderIsIgnored(t *testing.T) {
	rw, rec := newResponseWriter()

	rw.WriteHeader(http.StatusNotFound)
	rw.WriteHeader(http.StatusOK) // повторный вызов игнорируется

	assert.Equal(t, http.StatusNotFound, rw.status)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestResponseWriter_WriteImpliesOK(t *testing.T) {
	rw, rec := newResponseWriter()

	n, err := rw.Write([]byte("hello"))
	require.NoError(t, err)

	assert.Equal(t, 5, n)
	assert.Equal(t, http.StatusOK, rw.status)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello", rec.Body.String())
}

func TestResponseWriter_SizeAccumulatesAcrossWrites(t *testing.T) {
	rw, _ := newResponseWriter()

	_, err := rw.Write([]byte("event: insert\n"))
	require.NoError(t, err)
	_, err = rw.Write([]byte("data: {}\n\n"))
	require.NoError(t, err)

	assert.Equal(t, len("event: insert\n")+len("data: {}\n\n"), rw.size)
}

func TestResponseWriter_WriteAfterExplicitHeaderKeepsStatus(t *testing.T) {
	rw, rec := newResponseWriter()

	rw.WriteHeader(http.StatusAccepted)
	_, err := rw.Write([]byte("ok"))
	require.NoError(t, err)

	assert.Equal(t, http.StatusAccepted, rw.status)
	assert.Equal(t, http.StatusAccepted, rec.Code)
}

// Flush должен доходить до нижележащего writer-а, иначе SSE-поток
// застрянет в буфере.
func TestResponseWriter_FlushForwardsToUnderlyingWriter(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rec}

	rw.Flush()

	assert.True(t, rec.Flushed)
	assert.Equal(t, http.StatusOK, rw.status, "implicit WriteHeader on first Flush")
}

func TestResponseWriter_FlushWithoutFlusherIsNoop(t *testing.T) {
	rw := &responseWriter{ResponseWriter: plainResponseWriter{header: http.Header{}}}

	// не должно паниковать
	rw.Flush()
	assert.False(t, rw.wroteHeader)
}

// plainResponseWriter не реализует http.Flusher.
type plainResponseWriter struct {
	header http.Header
}

func (p plainResponseWriter) Header() http.Header         { return p.header }
func (p plainResponseWriter) Write(b []byte) (int, error) { return len(b), nil }
func (p plainResponseWriter) WriteHeader(int)             {}
