// Package lookup finds UI items, trying the last known position before a
// full structural search.
//
// A lookup first asks the position cache where the item was last seen and
// probes that point. If whatever sits there still satisfies the criteria the
// item is returned without walking the tree. Otherwise the structural search
// is polled until it finds the item or the timeout expires, and the result's
// location is written back to the cache.
package lookup

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/1broseidon/uifind/internal/criteria"
	"github.com/1broseidon/uifind/internal/item"
	"github.com/1broseidon/uifind/internal/itemmap"
	"github.com/1broseidon/uifind/internal/platform"
	"github.com/1broseidon/uifind/internal/poll"
)

const (
	DefaultTimeout       = 5 * time.Second
	DefaultRetryInterval = 50 * time.Millisecond
)

// Factory performs the structural search. It returns a nil item when nothing
// matches yet.
type Factory interface {
	Get(c criteria.Criteria, l item.ActionListener) (item.Item, error)
}

// FactoryFunc adapts a function to Factory.
type FactoryFunc func(c criteria.Criteria, l item.ActionListener) (item.Item, error)

func (f FactoryFunc) Get(c criteria.Criteria, l item.ActionListener) (item.Item, error) {
	return f(c, l)
}

// Prober reports the element at a screen point, or nil when there is none.
// Probers that also implement platform.ParentReporter let the fast path look
// past child windows and verify scoped criteria; without it scoped criteria
// always search.
type Prober interface {
	ElementAtPoint(p platform.Point) (*platform.Element, error)
}

// Options configures a Coordinator.
type Options struct {
	// DefaultTimeout applies when Get is called without WithTimeout. Zero
	// selects the package DefaultTimeout.
	DefaultTimeout time.Duration
	// RetryInterval is the pause between structural search attempts.
	RetryInterval time.Duration
	Registry      *item.Registry
	Logger        *slog.Logger
}

// Coordinator runs lookups against one position cache. It is not safe for
// concurrent use.
type Coordinator struct {
	cache          *itemmap.Map
	prober         Prober
	registry       *item.Registry
	defaultTimeout time.Duration
	retryInterval  time.Duration
	logger         *slog.Logger
}

// New creates a coordinator over cache. A nil prober disables the position
// fast path.
func New(cache *itemmap.Map, prober Prober, opts Options) *Coordinator {
	if cache == nil {
		cache = itemmap.New()
	}
	timeout := opts.DefaultTimeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	interval := opts.RetryInterval
	if interval <= 0 {
		interval = DefaultRetryInterval
	}
	registry := opts.Registry
	if registry == nil {
		registry = item.DefaultRegistry()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Coordinator{
		cache:          cache,
		prober:         prober,
		registry:       registry,
		defaultTimeout: timeout,
		retryInterval:  interval,
		logger:         logger,
	}
}

// Cache returns the position cache the coordinator records into.
func (c *Coordinator) Cache() *itemmap.Map {
	return c.cache
}

// GetOption configures a single Get call.
type GetOption func(*getOptions)

type getOptions struct {
	timeout time.Duration
}

// WithTimeout overrides the default timeout for one call. Zero still makes one
// search attempt.
func WithTimeout(d time.Duration) GetOption {
	return func(o *getOptions) {
		o.timeout = d
	}
}

// Get looks up the item described by crit.
func (c *Coordinator) Get(f Factory, crit criteria.Criteria, l item.ActionListener, opts ...GetOption) Result {
	o := getOptions{timeout: c.defaultTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	if o.timeout < 0 {
		o.timeout = 0
	}
	crit = crit.Normalize()

	c.logger.Debug("finding item", "criteria", crit.String(), "timeout", o.timeout)

	if res, ok := c.fromPosition(crit, l); ok {
		return res
	}
	return c.search(f, crit, l, o.timeout)
}

// maxAncestors bounds the walk up from a probed element.
const maxAncestors = 64

// fromPosition tries the cached point. ok is false when the caller should
// fall back to a structural search.
func (c *Coordinator) fromPosition(crit criteria.Criteria, l item.ActionListener) (Result, bool) {
	p := c.cache.Lookup(crit)
	if !p.Known() || c.prober == nil {
		c.logger.Debug("no cached position, searching", "criteria", crit.String())
		return Result{}, false
	}
	parents, canWalk := c.prober.(platform.ParentReporter)
	if crit.Scope != "" && !canWalk {
		c.logger.Debug("scope cannot be verified at a point, searching", "criteria", crit.String())
		return Result{}, false
	}

	el, err := c.prober.ElementAtPoint(p)
	if err != nil {
		return failed(crit, OpProbe, err), true
	}
	if canWalk {
		el, err = matchAncestor(parents, el, crit, p)
		if err != nil {
			return failed(crit, OpProbe, err), true
		}
	} else if el != nil && !crit.AppliesTo(*el) {
		el = nil
	}
	if el == nil {
		c.logger.Debug("item changed position, searching",
			"criteria", crit.String(),
			"point", p.String())
		c.cache.Forget(crit)
		return Result{}, false
	}

	it, err := c.registry.Create(*el, l, crit.CustomType)
	if err != nil {
		return failed(crit, OpCreate, err), true
	}
	c.logger.Debug("found item at cached position", "criteria", crit.String(), "point", p.String())
	return Result{Status: Found, Item: it, Path: PathPosition}, true
}

// matchAncestor returns the nearest element at or above probed that satisfies
// crit and, for scoped criteria, lies inside the scope container. The deepest
// element at a point is often a child of the control, so the walk starts there
// and goes up. An ancestor only matches when p is its centre, the point the
// item was recorded at.
func matchAncestor(parents platform.ParentReporter, probed *platform.Element, crit criteria.Criteria, p platform.Point) (*platform.Element, error) {
	var match *platform.Element
	el := probed
	for depth := 0; el != nil && depth < maxAncestors; depth++ {
		switch {
		case match == nil && crit.AppliesTo(*el) && (depth == 0 || el.Bounds.Center() == p):
			match = el
			if crit.Scope == "" {
				return match, nil
			}
		case match != nil && crit.IsScope(*el):
			return match, nil
		}
		next, err := parents.Parent(el.Handle)
		if err != nil {
			return nil, err
		}
		el = next
	}
	return nil, nil
}

func (c *Coordinator) search(f Factory, crit criteria.Criteria, l item.ActionListener, timeout time.Duration) Result {
	if f == nil {
		return failed(crit, OpSearch, errors.New("no item factory"))
	}

	start := time.Now()
	it, err := poll.Perform(func() (item.Item, error) {
		return f.Get(crit, l)
	}, poll.Spec[item.Item]{
		Timeout:  timeout,
		Interval: c.retryInterval,
		Matched:  func(it item.Item) bool { return it != nil },
		Expired:  func() item.Item { return nil },
	})
	if err != nil {
		c.logger.Warn("item search failed", "criteria", crit.String(), "error", err)
		return failed(crit, OpSearch, err)
	}
	if it == nil {
		c.logger.Debug("item not found", "criteria", crit.String(), "elapsed", time.Since(start))
		return Result{Status: Absent, Path: PathSearch}
	}

	c.cache.Record(crit, it.Location())
	c.logger.Debug("found item by search",
		"criteria", crit.String(),
		"location", it.Location().String(),
		"elapsed", time.Since(start))
	return Result{Status: Found, Item: it, Path: PathSearch}
}

func failed(crit criteria.Criteria, op Op, err error) Result {
	return Result{
		Status: Failed,
		Err:    &LookupError{Criteria: crit, Op: op, Err: err},
	}
}

// Status is the outcome of a lookup.
type Status int

const (
	Absent Status = iota
	Found
	Failed
)

func (s Status) String() string {
	switch s {
	case Absent:
		return "absent"
	case Found:
		return "found"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Path records which route produced a result.
type Path int

const (
	PathNone Path = iota
	PathPosition
	PathSearch
)

func (p Path) String() string {
	switch p {
	case PathPosition:
		return "position"
	case PathSearch:
		return "search"
	default:
		return "none"
	}
}

// Result is the outcome of Get. Absent is a normal outcome, not an error.
type Result struct {
	Status Status
	Item   item.Item
	Err    error
	Path   Path
}

func (r Result) Found() bool { return r.Status == Found }

// Unpack returns the item and error in Go's usual shape. Absent yields
// (nil, nil).
func (r Result) Unpack() (item.Item, error) {
	return r.Item, r.Err
}

// Op names the step of a lookup that failed.
type Op string

const (
	OpProbe  Op = "probe"
	OpCreate Op = "create"
	OpSearch Op = "search"
)

// LookupError reports that the lookup machinery itself failed, as opposed to
// the item not being there.
type LookupError struct {
	Criteria criteria.Criteria
	Op       Op
	Err      error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("lookup %s for %s: %v", e.Op, e.Criteria, e.Err)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}
