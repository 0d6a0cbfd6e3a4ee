package assets

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutThenServeHTTPReturnsBytesWithContentLength(t *testing.T) {
	store := NewStore("/assets/")
	id, url := store.Put([]byte("hello noodles"))
	assert.Equal(t, "/assets/"+id.String(), url)

	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	store.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "13", rec.Header().Get("Content-Length"))
	assert.Equal(t, "application/octet-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "hello noodles", rec.Body.String())
}

func TestServeHTTPReturns404ForUnknownAsset(t *testing.T) {
	store := NewStore("/assets/")
	req := httptest.NewRequest(http.MethodGet, "/assets/00000000-0000-0000-0000-000000000000", nil)
	rec := httptest.NewRecorder()
	store.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteRemovesAsset(t *testing.T) {
	store := NewStore("/assets/")
	id, _ := store.Put([]byte("x"))
	store.Delete(id)
	_, ok := store.Get(id)
	assert.False(t, ok)
}
