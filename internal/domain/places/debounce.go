package places

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/chargedrops/chargedrops-api/internal/types"
)

// Results is one delivered autocomplete outcome. A failed lookup degrades to
// an empty prediction list rather than surfacing an error.
type Results struct {
	Query       string
	Predictions []types.PlacePrediction
}

// Autocompleter debounces keystroke input before issuing external search
// calls: a search fires only after the configured inactivity delay, and a new
// keystroke resets the pending timer instead of queuing another request.
// Results that arrive after the input has changed again are discarded.
type Autocompleter struct {
	mu        sync.Mutex
	logger    *slog.Logger
	client    Client
	delay     time.Duration
	limiter   *rate.Limiter
	timer     *time.Timer
	gen       uint64
	onResults func(Results)
}

// NewAutocompleter delivers debounced results through onResults. The
// callback runs on the search goroutine; keep it cheap.
func NewAutocompleter(client Client, delay time.Duration, onResults func(Results), logger *slog.Logger) *Autocompleter {
	return &Autocompleter{
		logger:    logger,
		client:    client,
		delay:     delay,
		limiter:   rate.NewLimiter(rate.Limit(2), 4),
		onResults: onResults,
	}
}

// Input registers a keystroke. Blank input cancels any pending search.
func (a *Autocompleter) Input(ctx context.Context, query string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.gen++
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}

	q := strings.TrimSpace(query)
	if q == "" {
		return
	}

	gen := a.gen
	a.timer = time.AfterFunc(a.delay, func() {
		a.search(ctx, gen, q)
	})
}

// Stop cancels any pending search.
func (a *Autocompleter) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.gen++
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}

func (a *Autocompleter) search(ctx context.Context, gen uint64, query string) {
	// Server-side backstop on top of the debounce.
	if err := a.limiter.Wait(ctx); err != nil {
		return
	}

	predictions, err := a.client.Autocomplete(ctx, query)
	if err != nil {
		a.logger.WarnContext(ctx, "autocomplete degraded to no results",
			slog.Any("error", err),
			slog.String("query", query))
		predictions = []types.PlacePrediction{}
	}

	a.mu.Lock()
	stale := gen != a.gen
	a.mu.Unlock()
	if stale {
		return
	}

	a.onResults(Results{Query: query, Predictions: predictions})
}
