package dashboard

import (
	"context"
	"sync"
	"time"

	"weather-dashboard/client"
	"weather-dashboard/models"
)

// DefaultSearchDebounce is the trailing quiet window before a queued query is
// sent to the geocoders.
const DefaultSearchDebounce = 300 * time.Millisecond

// SearchResult is one delivered search outcome.
type SearchResult struct {
	Query   string
	Results []models.GeocodeResult
	Err     error
}

// Searcher debounces rapid-fire search input. Only the last query within the
// quiet window reaches the network, and responses arriving for a superseded
// query are discarded so the delivered results always match the latest input.
type Searcher struct {
	client  *client.Client
	delay   time.Duration
	limit   int
	results chan SearchResult

	mu    sync.Mutex
	timer *time.Timer
	seq   uint64
}

// NewSearcher creates a debounced searcher. A non-positive delay uses the
// default window.
func NewSearcher(c *client.Client, delay time.Duration, limit int) *Searcher {
	if delay <= 0 {
		delay = DefaultSearchDebounce
	}
	return &Searcher{
		client:  c,
		delay:   delay,
		limit:   limit,
		results: make(chan SearchResult, 1),
	}
}

// Results delivers outcomes for queries that survived the debounce. Stale
// outcomes never appear here.
func (s *Searcher) Results() <-chan SearchResult {
	return s.results
}

// Search queues a query. Any previously queued query that has not fired yet
// is dropped; an in-flight response for an older query will be discarded when
// it lands.
func (s *Searcher) Search(ctx context.Context, query string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	seq := s.seq
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, func() {
		s.run(ctx, seq, query)
	})
}

// Flush fires any queued query immediately, skipping the remaining wait.
func (s *Searcher) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Reset(0)
	}
}

func (s *Searcher) run(ctx context.Context, seq uint64, query string) {
	if !s.isCurrent(seq) {
		return
	}

	results, err := s.client.SearchLocation(ctx, query, s.limit)

	// The input may have moved on while the request was in flight.
	if !s.isCurrent(seq) {
		return
	}

	out := SearchResult{Query: query, Results: results, Err: err}
	select {
	case s.results <- out:
	default:
		// Replace an unconsumed older result instead of blocking.
		select {
		case <-s.results:
		default:
		}
		select {
		case s.results <- out:
		default:
		}
	}
}

func (s *Searcher) isCurrent(seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return seq == s.seq
}
