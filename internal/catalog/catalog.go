package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/text/language"
)

// AllCategories is the category filter that keeps every project.
const AllCategories = "all"

// DefaultPageSize is how many projects fit on one page.
const DefaultPageSize = 6

// ErrInvalidSortOrder is returned for a sort order outside SortOrders.
var ErrInvalidSortOrder = errors.New("invalid sort order")

var errEmptyDocument = fmt.Errorf("%w: empty document", ErrMalformedDocument)

// SortOrder selects how matching projects are ordered.
type SortOrder string

const (
	SortNewest SortOrder = "newest"
	SortOldest SortOrder = "oldest"
	SortName   SortOrder = "name"
)

// SortOrders lists the accepted sort orders.
var SortOrders = []SortOrder{SortNewest, SortOldest, SortName}

// ParseSortOrder maps a caller-supplied value onto a SortOrder.
func ParseSortOrder(s string) (SortOrder, error) {
	switch o := SortOrder(s); o {
	case SortNewest, SortOldest, SortName:
		return o, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSortOrder, s)
}

// Status is the load state of a catalog.
type Status string

const (
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusError   Status = "error"
)

// Result is what a page view renders after every change.
type Result struct {
	Status          Status     `json:"status"`
	VisibleProjects []Project  `json:"visibleProjects"`
	TotalMatches    int        `json:"totalMatches"`
	CurrentPage     int        `json:"currentPage"`
	PageCount       int        `json:"pageCount"`
	Categories      []Category `json:"categories"`
	ActiveCategory  string     `json:"activeCategory"`
	SearchTerm      string     `json:"searchTerm"`
	SortOrder       SortOrder  `json:"sortOrder"`
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithPageSize sets the page size. Values below 1 keep the default.
func WithPageSize(n int) Option {
	return func(c *Catalog) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithLocale sets the language used to order titles.
func WithLocale(tag language.Tag) Option {
	return func(c *Catalog) { c.locale = tag }
}

// WithLogger sets the logger used to report the load outcome.
func WithLogger(l *slog.Logger) Option {
	return func(c *Catalog) {
		if l != nil {
			c.logger = l
		}
	}
}

type collection struct {
	projects   []Project
	categories []Category
}

// Catalog is one page view over the project collection. It owns the query
// state and recomputes the visible page on every change. It is safe for
// concurrent use; listeners are called without the lock held.
type Catalog struct {
	mu     sync.Mutex
	status Status
	err    error
	data   *collection
	ready  chan struct{}

	category string
	search   string
	sort     SortOrder
	page     int
	filtered []Project

	pageSize int
	locale   language.Tag
	logger   *slog.Logger

	listeners map[int]func(Result)
	nextID    int
}

func newCatalog(opts ...Option) *Catalog {
	c := &Catalog{
		status:    StatusLoading,
		ready:     make(chan struct{}),
		category:  AllCategories,
		sort:      SortNewest,
		page:      1,
		pageSize:  DefaultPageSize,
		locale:    language.English,
		logger:    slog.Default(),
		listeners: make(map[int]func(Result)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// New returns a catalog in the loading state and fetches src in the
// background. A failed fetch moves the catalog to StatusError; it is never
// retried.
func New(ctx context.Context, src Source, opts ...Option) *Catalog {
	c := newCatalog(opts...)
	go c.load(ctx, src)
	return c
}

// NewFromDocument returns a catalog that is ready immediately.
func NewFromDocument(doc *Document, opts ...Option) *Catalog {
	c := newCatalog(opts...)
	c.settle(doc, nil)
	return c
}

func (c *Catalog) load(ctx context.Context, src Source) {
	doc, err := src.Fetch(ctx)
	if err == nil && doc == nil {
		err = errEmptyDocument
	}
	if err != nil {
		c.logger.Error("catalog load failed", "error", err)
	} else {
		c.logger.Info("catalog loaded", "projects", len(doc.Projects), "categories", len(doc.Categories))
	}
	c.settle(doc, err)
}

func (c *Catalog) settle(doc *Document, err error) {
	if err == nil && doc == nil {
		err = errEmptyDocument
	}
	if err != nil {
		c.adopt(StatusError, err, nil)
		return
	}
	c.adopt(StatusReady, nil, &collection{projects: doc.Projects, categories: doc.Categories})
}

func (c *Catalog) adopt(status Status, err error, data *collection) {
	c.mu.Lock()
	c.status = status
	c.err = err
	c.data = data
	c.recompute()
	r, ls := c.snapshot()
	c.mu.Unlock()

	notify(ls, r)
	close(c.ready)
}

// Fork returns a fresh page view over the same collection with default
// query state. If c is still loading, the fork settles when c does.
func (c *Catalog) Fork() *Catalog {
	child := newCatalog(WithPageSize(c.pageSize), WithLocale(c.locale), WithLogger(c.logger))

	select {
	case <-c.ready:
		c.mu.Lock()
		status, err, data := c.status, c.err, c.data
		c.mu.Unlock()
		child.adopt(status, err, data)
	default:
		go func() {
			<-c.ready
			c.mu.Lock()
			status, err, data := c.status, c.err, c.data
			c.mu.Unlock()
			child.adopt(status, err, data)
		}()
	}
	return child
}

// Ready is closed once the load has settled, successfully or not.
func (c *Catalog) Ready() <-chan struct{} {
	return c.ready
}

// Wait blocks until the load settles or ctx is done.
func (c *Catalog) Wait(ctx context.Context) error {
	select {
	case <-c.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Err reports why the load failed, if it did.
func (c *Catalog) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// PageSize is fixed for the catalog's lifetime.
func (c *Catalog) PageSize() int {
	return c.pageSize
}

// SetCategoryFilter selects a category id or AllCategories and returns to
// page 1. An unknown id matches nothing.
func (c *Catalog) SetCategoryFilter(categoryID string) Result {
	return c.mutate(func() {
		c.category = categoryID
		c.page = 1
	})
}

// SetSearchTerm filters on title, description and technologies, ignoring
// case, and returns to page 1. Blank text clears the filter.
func (c *Catalog) SetSearchTerm(text string) Result {
	return c.mutate(func() {
		c.search = text
		c.page = 1
	})
}

// SetSortOrder reorders the matches and keeps the current page.
func (c *Catalog) SetSortOrder(order SortOrder) (Result, error) {
	if _, err := ParseSortOrder(string(order)); err != nil {
		return c.Result(), err
	}
	return c.mutate(func() { c.sort = order }), nil
}

// GoToPage moves to page n, clamped into the valid page range.
func (c *Catalog) GoToPage(n int) Result {
	return c.mutate(func() { c.page = n })
}

// Result returns the current page view.
func (c *Catalog) Result() Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, _ := c.snapshot()
	return r
}

// Matches returns every project matching the current filters, in sort
// order, across all pages.
func (c *Catalog) Matches() []Project {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Project(nil), c.filtered...)
}

// Subscribe registers fn to receive the result after every change and once
// when the load settles. The returned func removes it.
func (c *Catalog) Subscribe(fn func(Result)) (cancel func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

func (c *Catalog) mutate(fn func()) Result {
	c.mu.Lock()
	fn()
	c.recompute()
	r, ls := c.snapshot()
	c.mu.Unlock()

	notify(ls, r)
	return r
}

// recompute rebuilds the filtered set and clamps the page. Callers hold mu.
func (c *Catalog) recompute() {
	if c.data == nil {
		c.filtered = nil
		c.page = 1
		return
	}

	c.filtered = filterProjects(c.data.projects, c.category, c.search)
	sortProjects(c.filtered, c.sort, c.locale)
	c.page = clamp(c.page, 1, pageCount(len(c.filtered), c.pageSize))
}

// snapshot builds the exposed result. Callers hold mu.
func (c *Catalog) snapshot() (Result, []func(Result)) {
	total := len(c.filtered)
	r := Result{
		Status:          c.status,
		VisibleProjects: []Project{},
		TotalMatches:    total,
		CurrentPage:     c.page,
		PageCount:       pageCount(total, c.pageSize),
		Categories:      []Category{},
		ActiveCategory:  c.category,
		SearchTerm:      c.search,
		SortOrder:       c.sort,
	}

	if total > 0 {
		start := (c.page - 1) * c.pageSize
		end := min(start+c.pageSize, total)
		r.VisibleProjects = append(r.VisibleProjects, c.filtered[start:end]...)
	}
	if c.data != nil {
		r.Categories = append(r.Categories, c.data.categories...)
	}

	ls := make([]func(Result), 0, len(c.listeners))
	for _, fn := range c.listeners {
		ls = append(ls, fn)
	}
	return r, ls
}

func notify(ls []func(Result), r Result) {
	for _, fn := range ls {
		fn(r)
	}
}

func pageCount(total, size int) int {
	if total == 0 {
		return 1
	}
	return (total + size - 1) / size
}

func clamp(n, lo, hi int) int {
	return max(lo, min(n, hi))
}
