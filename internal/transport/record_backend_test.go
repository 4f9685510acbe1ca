package transport

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"inventory-backoffice/internal/repository"

	"go.uber.org/zap"
)

// recordBackend is an in-memory inventory backend speaking the nestjsx-crud
// dialect: names are unique per resource and unknown ids answer 404.
type recordBackend struct {
	mu       sync.Mutex
	nextID   int64
	records  map[string]map[int64]map[string]any
	lastBody map[string]any
	queries  []string
}

func newRecordBackend(t *testing.T) (*recordBackend, repository.ResourceClient) {
	t.Helper()
	b := &recordBackend{records: map[string]map[int64]map[string]any{}}
	server := httptest.NewServer(b)
	t.Cleanup(server.Close)
	return b, repository.NewResourceClient(server.URL, 5*time.Second, zap.NewNop())
}

// seed stores a record directly and returns its id
func (b *recordBackend) seed(resource string, record map[string]any) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.insertLocked(resource, record)
}

func (b *recordBackend) count(resource string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.records[resource])
}

func (b *recordBackend) insertLocked(resource string, record map[string]any) int64 {
	if b.records[resource] == nil {
		b.records[resource] = map[int64]map[string]any{}
	}
	b.nextID++
	record["id"] = b.nextID
	record["createdAt"] = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC).Format(time.RFC3339)
	b.records[resource][b.nextID] = record
	return b.nextID
}

func (b *recordBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	resource, rawID, hasID := strings.Cut(strings.Trim(r.URL.Path, "/"), "/")
	records := b.records[resource]

	var id int64
	if hasID {
		parsed, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil || records[parsed] == nil {
			writeBackendError(w, http.StatusNotFound, fmt.Sprintf("%s %s not found", resource, rawID))
			return
		}
		id = parsed
	}

	switch {
	case r.Method == http.MethodGet && !hasID:
		b.queries = append(b.queries, r.URL.RawQuery)
		data := b.filterLocked(records, r.URL.Query()["filter"])
		writeBackendJSON(w, http.StatusOK, map[string]any{"data": data, "total": len(data)})

	case r.Method == http.MethodGet:
		writeBackendJSON(w, http.StatusOK, records[id])

	case r.Method == http.MethodPost && !hasID:
		body, ok := b.decodeLocked(w, r)
		if !ok {
			return
		}
		if b.nameTakenLocked(resource, body["name"], 0) {
			writeBackendError(w, http.StatusConflict, "name already exists")
			return
		}
		newID := b.insertLocked(resource, body)
		writeBackendJSON(w, http.StatusCreated, b.records[resource][newID])

	case r.Method == http.MethodPatch && hasID:
		body, ok := b.decodeLocked(w, r)
		if !ok {
			return
		}
		if b.nameTakenLocked(resource, body["name"], id) {
			writeBackendError(w, http.StatusConflict, "name already exists")
			return
		}
		for k, v := range body {
			records[id][k] = v
		}
		writeBackendJSON(w, http.StatusOK, records[id])

	case r.Method == http.MethodDelete && hasID:
		delete(records, id)
		w.WriteHeader(http.StatusOK)

	default:
		writeBackendError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (b *recordBackend) decodeLocked(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	raw, _ := io.ReadAll(r.Body)
	body := map[string]any{}
	if err := json.Unmarshal(raw, &body); err != nil {
		writeBackendError(w, http.StatusBadRequest, "malformed body")
		return nil, false
	}
	b.lastBody = body
	return body, true
}

func (b *recordBackend) nameTakenLocked(resource string, name any, self int64) bool {
	if name == nil {
		return false
	}
	for id, record := range b.records[resource] {
		if id != self && record["name"] == name {
			return true
		}
	}
	return false
}

// filterLocked applies name||$cont||value filters and returns records by id
func (b *recordBackend) filterLocked(records map[int64]map[string]any, filters []string) []map[string]any {
	ids := make([]int64, 0, len(records))
	for id := range records {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	data := []map[string]any{}
	for _, id := range ids {
		record := records[id]
		keep := true
		for _, f := range filters {
			parts := strings.SplitN(f, "||", 3)
			if len(parts) != 3 || parts[1] != "$cont" {
				continue
			}
			value, _ := record[parts[0]].(string)
			if !strings.Contains(strings.ToLower(value), strings.ToLower(parts[2])) {
				keep = false
			}
		}
		if keep {
			data = append(data, record)
		}
	}
	return data
}

func writeBackendJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeBackendError(w http.ResponseWriter, status int, message string) {
	writeBackendJSON(w, status, map[string]any{
		"statusCode": status,
		"message":    message,
		"error":      http.StatusText(status),
	})
}
