// Package assets implements the HTTP sideband for large binary payloads
// (buffer/image bytes) that the wire protocol references by URI instead
// of inlining, per spec.md §6.
package assets

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/google/uuid"
)

// Store holds byte payloads keyed by UUID and serves them over HTTP.
// Grounded on coreengine/config/pipeline.go's ID-keyed resource maps,
// repurposed here from config lookup to binary asset lookup.
type Store struct {
	basePath string

	mu    sync.RWMutex
	blobs map[uuid.UUID][]byte
}

// NewStore returns a store that serves assets under basePath (e.g.
// "/assets/"). basePath must end in "/".
func NewStore(basePath string) *Store {
	return &Store{basePath: basePath, blobs: map[uuid.UUID][]byte{}}
}

// Put stores data under a freshly minted UUID and returns the URL a
// Buffer/Image component's URI field should carry.
func (s *Store) Put(data []byte) (id uuid.UUID, url string) {
	id = uuid.New()
	s.mu.Lock()
	s.blobs[id] = data
	s.mu.Unlock()
	return id, s.URL(id)
}

// URL renders the public URL for a stored asset.
func (s *Store) URL(id uuid.UUID) string {
	return s.basePath + id.String()
}

// Get returns the bytes stored under id.
func (s *Store) Get(id uuid.UUID) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.blobs[id]
	return b, ok
}

// Delete removes the asset under id, used when its owning Buffer/Image
// component is deleted.
func (s *Store) Delete(id uuid.UUID) {
	s.mu.Lock()
	delete(s.blobs, id)
	s.mu.Unlock()
}

// ServeHTTP serves basePath/<uuid> as application/octet-stream with an
// explicit Content-Length, the minimum spec.md §6 asks of the sideband.
func (s *Store) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Path[len(s.basePath):]
	id, err := uuid.Parse(raw)
	if err != nil {
		http.Error(w, "invalid asset id", http.StatusBadRequest)
		return
	}
	data, ok := s.Get(id)
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if r.Method == http.MethodHead {
		return
	}
	w.Write(data)
}

var _ http.Handler = (*Store)(nil)
