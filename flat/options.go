package flat

import (
	"github.com/hupe1980/svscore"
	"github.com/hupe1980/svscore/predicate"
	"github.com/hupe1980/svscore/resource"
)

// options collects the functional-options configuration for New/
// NewReferencing; it is not generic over T since none of the knobs it
// carries depend on the element type.
type options struct {
	dataBatchSize  int
	queryBatchSize int
	logger         *svscore.Logger
	res            *resource.Controller
}

// Option configures an Engine at construction time.
type Option func(*options)

// WithDataBatchSize sets the outer-loop data tile size. 0 (the default)
// means automatic: min(N, 100000).
func WithDataBatchSize(n int) Option {
	return func(o *options) { o.dataBatchSize = n }
}

// WithQueryBatchSize sets the inner-loop query slice size handed to each
// worker. 0 (the default) means automatic: ceil(Q / num_workers).
func WithQueryBatchSize(n int) Option {
	return func(o *options) { o.queryBatchSize = n }
}

// WithLogger sets the engine's logger. Defaults to a no-op logger.
func WithLogger(l *svscore.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithResourceController wires a resource controller into the thread
// pool that New creates: each slice the pool dispatches holds one of the
// controller's background worker slots while it runs. Optional; nil
// (the default) means no limiting.
func WithResourceController(c *resource.Controller) Option {
	return func(o *options) { o.res = c }
}

// searchOptions collects per-call Search/SearchInto configuration.
type searchOptions struct {
	predicate predicate.Predicate
}

// SearchOption configures a single Search/SearchInto call.
type SearchOption func(*searchOptions)

// WithPredicate restricts the search to dataset indices for which p
// reports true. The default predicate accepts every index.
func WithPredicate(p predicate.Predicate) SearchOption {
	return func(o *searchOptions) { o.predicate = p }
}
