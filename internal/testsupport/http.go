package testsupport

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// Route is one canned response of a fake open-data portal.
type Route struct {
	Status      int
	Body        []byte
	ContentType string
}

// Portal is an httptest server serving canned dataset exports and counting
// requests per path.
type Portal struct {
	*httptest.Server

	mu     sync.Mutex
	routes map[string]Route
	hits   map[string]int
	agents []string
}

// NewPortal starts a Portal closed at test cleanup. Unknown paths return 404.
func NewPortal(t testing.TB, routes map[string]Route) *Portal {
	t.Helper()

	p := &Portal{routes: routes, hits: map[string]int{}}
	p.Server = httptest.NewServer(http.HandlerFunc(p.serve))
	t.Cleanup(p.Close)
	return p
}

func (p *Portal) serve(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	p.hits[r.URL.Path]++
	p.agents = append(p.agents, r.UserAgent())
	route, ok := p.routes[r.URL.Path]
	p.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	if route.ContentType != "" {
		w.Header().Set("Content-Type", route.ContentType)
	}
	status := route.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = w.Write(route.Body)
}

// URL returns the absolute URL for path on the portal.
func (p *Portal) URL(path string) string {
	return p.Server.URL + path
}

// Hits reports how many requests reached path.
func (p *Portal) Hits(path string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hits[path]
}

// TotalHits reports requests across all paths.
func (p *Portal) TotalHits() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	total := 0
	for _, n := range p.hits {
		total += n
	}
	return total
}

// UserAgents returns the User-Agent of every request seen so far.
func (p *Portal) UserAgents() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.agents...)
}
