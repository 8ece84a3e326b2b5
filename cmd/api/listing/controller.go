package listing

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"

	"car-passion/cmd/api/clients/carclient"
	"car-passion/logger"
	"car-passion/models"
)

// ErrSuperseded is returned by a fetch that was overtaken by a newer one.
// Its result never reaches the controller state.
var ErrSuperseded = errors.New("listing: fetch superseded by a newer request")

// Fetcher is the part of carclient.Client the controller needs.
type Fetcher interface {
	ListCars(ctx context.Context, query url.Values) (carclient.ListCarsResponse, error)
}

type Status string

const (
	StatusIdle      Status = "idle"
	StatusFetching  Status = "fetching"
	StatusRetrying  Status = "retrying"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Controller owns filter, sort and page state for one listing view and
// turns every action into exactly one canonical fetch.
type Controller struct {
	fetcher     Fetcher
	policy      RetryPolicy
	maxAttempts int
	sleep       SleepFunc

	mu         sync.Mutex
	query      Query
	items      []models.Car
	total      int
	status     Status
	retryCount int
	notices    []Notice
	lastErr    error
	seq        uint64
	cancel     context.CancelFunc
}

type Option func(*Controller)

// WithRetryPolicy replaces the retry policy. maxAttempts is only used to
// render "(N/max)" in retry notices.
func WithRetryPolicy(p RetryPolicy, maxAttempts int) Option {
	return func(c *Controller) {
		c.policy = p
		c.maxAttempts = maxAttempts
	}
}

func WithSleep(fn SleepFunc) Option {
	return func(c *Controller) { c.sleep = fn }
}

func NewController(f Fetcher, opts ...Option) *Controller {
	p := DefaultRetryPolicy()
	c := &Controller{
		fetcher:     f,
		policy:      p,
		maxAttempts: p.MaxAttempts(),
		sleep:       sleepCtx,
		query:       DefaultQuery(),
		items:       []models.Car{},
		status:      StatusIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Hydrate replaces filter, sort and page state from location parameters.
func (c *Controller) Hydrate(v url.Values) {
	c.mu.Lock()
	c.query = ParseQuery(v)
	c.mu.Unlock()
}

func (c *Controller) Query() Query {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query.clone()
}

// Load fetches the current state.
func (c *Controller) Load(ctx context.Context) (Snapshot, error) {
	return c.dispatch(ctx, func(q *Query) {})
}

// ApplyFilters replaces the filters and always goes back to page 1.
func (c *Controller) ApplyFilters(ctx context.Context, filters map[string]string) (Snapshot, error) {
	return c.dispatch(ctx, func(q *Query) {
		q.Filters = FilterSet(filters).Normalize()
		q.Page = 1
	})
}

// ChangeSort keeps filters and page.
func (c *Controller) ChangeSort(ctx context.Context, sort string) (Snapshot, error) {
	return c.dispatch(ctx, func(q *Query) {
		q.Sort = ParseSort(sort)
	})
}

// ChangePage keeps filters and sort.
func (c *Controller) ChangePage(ctx context.Context, page int) (Snapshot, error) {
	return c.dispatch(ctx, func(q *Query) {
		if page < 1 {
			page = 1
		}
		q.Page = page
	})
}

// ClearFilters resets to no filters, price_asc, page 1.
func (c *Controller) ClearFilters(ctx context.Context) (Snapshot, error) {
	return c.dispatch(ctx, func(q *Query) {
		*q = DefaultQuery()
	})
}

func (c *Controller) dispatch(ctx context.Context, mutate func(q *Query)) (Snapshot, error) {
	c.mu.Lock()
	mutate(&c.query)
	c.mu.Unlock()

	err := c.fetch(ctx)
	return c.Snapshot(), err
}

// fetch runs one fetch cycle: Fetching, then Retrying while the policy
// allows, then Succeeded or Failed. A newer fetch cancels this one.
func (c *Controller) fetch(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.seq++
	seq := c.seq
	fctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	q := c.query.clone()
	c.status = StatusFetching
	c.retryCount = 0
	c.notices = nil
	c.lastErr = nil
	c.mu.Unlock()

	defer func() {
		cancel()
		c.mu.Lock()
		if c.seq == seq {
			c.cancel = nil
		}
		c.mu.Unlock()
	}()

	params := q.Values()
	for {
		resp, err := c.fetcher.ListCars(fctx, params)

		c.mu.Lock()
		if c.seq != seq {
			c.mu.Unlock()
			return ErrSuperseded
		}
		if err == nil {
			c.items, c.total = normalize(resp)
			c.status = StatusSucceeded
			c.retryCount = 0
			c.mu.Unlock()
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			// caller gave up; keep the previous result set
			c.status = StatusIdle
			c.retryCount = 0
			c.mu.Unlock()
			return ctxErr
		}

		retry, delay := c.policy.Next(c.retryCount, err)
		if !retry {
			c.items = []models.Car{}
			c.total = 0
			c.status = StatusFailed
			c.retryCount = 0
			c.lastErr = err
			c.notices = append(c.notices, failureNotice(err))
			c.mu.Unlock()
			logger.WarnWithFields("listing fetch failed", logger.Fields{
				"query": params.Encode(),
				"error": err.Error(),
			})
			return err
		}

		c.retryCount++
		c.status = StatusRetrying
		c.notices = append(c.notices, retryNotice(c.retryCount, c.maxAttempts))
		attempt := c.retryCount
		c.mu.Unlock()

		logger.InfoWithFields("listing fetch retrying", logger.Fields{
			"query":   params.Encode(),
			"attempt": attempt,
			"delay":   delay.String(),
			"error":   err.Error(),
		})

		sleepErr := c.sleep(fctx, delay)

		c.mu.Lock()
		if c.seq != seq {
			c.mu.Unlock()
			return ErrSuperseded
		}
		if sleepErr != nil {
			c.status = StatusIdle
			c.retryCount = 0
			c.mu.Unlock()
			return sleepErr
		}
		c.status = StatusFetching
		c.mu.Unlock()
	}
}

// normalize turns a tolerant API payload into items and a total. A missing
// or zero total falls back to the number of items.
func normalize(resp carclient.ListCarsResponse) ([]models.Car, int) {
	items := resp.Cars
	if items == nil {
		items = []models.Car{}
	}
	total := resp.Total
	if total <= 0 {
		total = len(items)
	}
	return items, total
}

// Snapshot is the view model of the controller at one point in time.
type Snapshot struct {
	Query         Query        `json:"query"`
	Location      string       `json:"location"`
	Status        Status       `json:"status"`
	Items         []models.Car `json:"items"`
	Total         int          `json:"total"`
	Pagination    Pagination   `json:"pagination"`
	ActiveFilters int          `json:"active_filters"`
	Notices       []Notice     `json:"notices"`
	Err           error        `json:"-"`
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	items := make([]models.Car, len(c.items))
	copy(items, c.items)
	notices := make([]Notice, len(c.notices))
	copy(notices, c.notices)

	q := c.query.clone()
	return Snapshot{
		Query:         q,
		Location:      q.Encode(),
		Status:        c.status,
		Items:         items,
		Total:         c.total,
		Pagination:    NewPagination(c.total, q.Page),
		ActiveFilters: q.ActiveFilters(),
		Notices:       notices,
		Err:           c.lastErr,
	}
}

func (q Query) clone() Query {
	out := q
	out.Filters = make(FilterSet, len(q.Filters))
	for k, v := range q.Filters {
		out.Filters[k] = v
	}
	return out
}
