// Package navigation tells the rendering layer where to go after a mutation.
package navigation

import (
	"strings"
	"sync"
)

// Recorder is a Navigator that remembers the last listing location requested.
// The HTTP layer returns that location to the browser as a redirect hint.
type Recorder struct {
	mu       sync.Mutex
	basePath string
	location string
}

// NewRecorder creates a Recorder whose locations are rooted at basePath
func NewRecorder(basePath string) *Recorder {
	return &Recorder{basePath: strings.TrimRight(basePath, "/")}
}

// List records the listing location of resource
func (r *Recorder) List(resource string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.location = r.basePath + "/" + strings.Trim(resource, "/")
}

// Location returns the last recorded location, or "" if none
func (r *Recorder) Location() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.location
}
