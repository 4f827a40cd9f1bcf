package repositories

import (
	"net/http"
	"net/url"
	"sync"
)

// queryRecorder keeps the query strings seen by a test server.
type queryRecorder struct {
	mu      sync.Mutex
	queries []url.Values
}

func (q *queryRecorder) record(r *http.Request) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.queries = append(q.queries, r.URL.Query())
}

func (q *queryRecorder) last() url.Values {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.queries) == 0 {
		return url.Values{}
	}
	return q.queries[len(q.queries)-1]
}

func (q *queryRecorder) values(key string) []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]string, 0, len(q.queries))
	for _, query := range q.queries {
		out = append(out, query.Get(key))
	}
	return out
}
