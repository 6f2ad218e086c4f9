// Package backend defines the database adapters a benchmark session drives.
// Each adapter executes the query catalogue against one engine.
package backend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/whhaicheng/deal-bench/internal/domain/catalogue"
	"github.com/whhaicheng/deal-bench/internal/domain/connection"
	"github.com/whhaicheng/deal-bench/internal/domain/dataset"
)

var (
	// ErrNotConnected is returned when a backend is used before Connect.
	ErrNotConnected = errors.New("backend is not connected")

	// ErrUnsupportedQuery is returned for catalogue entries an adapter cannot run.
	ErrUnsupportedQuery = errors.New("unsupported query")
)

// Parameters every adapter binds into the fixed statements.
var (
	// FilterCountry is the address country of Q4 and Q6.
	FilterCountry = "England"
	// CountStatuses are the order statuses Q5 and Q6 count.
	CountStatuses = []string{"delivered", "processing", "shipped"}
	// CountBefore is the exclusive upper bound of the Q5 and Q6 order date.
	CountBefore = time.Date(2023, time.April, 1, 0, 0, 0, 0, time.UTC)
	// DeleteCategory is the product category whose reviews Q8 deletes.
	DeleteCategory = "charcoal"
	// DiscountBelow is the price under which Q10 sets Discount.
	DiscountBelow = 1000.0
	Discount      = 0.2
)

// Workload is the data a run executes against: the generated dataset and
// the bound parameters of the single-row and transactional statements.
type Workload struct {
	Dataset  *dataset.Dataset
	Fixtures *dataset.Fixtures
}

// Backend executes catalogue operations against one database engine.
// A backend is used by a single goroutine.
type Backend interface {
	// Type returns the engine this backend drives.
	Type() connection.DatabaseType

	// Connect opens the client connection and authenticates.
	Connect(ctx context.Context) error

	// Reset drops every collection of the benchmark database and
	// recreates the empty schema.
	Reset(ctx context.Context) error

	// Execute runs one catalogue operation to completion, draining any
	// result set it produces.
	Execute(ctx context.Context, q catalogue.Query, w *Workload) error

	// Version returns the server version string.
	Version(ctx context.Context) (string, error)

	// Close releases the connection.
	Close(ctx context.Context) error
}

// Factory creates an unconnected backend from connection parameters.
type Factory func(conn connection.Connection) (Backend, error)

// Registry maps engines to backend factories.
type Registry struct {
	factories map[connection.DatabaseType]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[connection.DatabaseType]Factory),
	}
}

// Register registers a factory for an engine, replacing any previous one.
func (r *Registry) Register(t connection.DatabaseType, f Factory) {
	r.factories[t] = f
}

// New creates a backend for conn. A nil conn is allowed for engines that
// need no connection parameters.
func (r *Registry) New(t connection.DatabaseType, conn connection.Connection) (Backend, error) {
	f, ok := r.factories[t]
	if !ok {
		return nil, fmt.Errorf("%w: %s", connection.ErrUnknownBackend, t)
	}
	if conn != nil {
		if err := conn.Validate(); err != nil {
			return nil, fmt.Errorf("invalid %s connection: %w", t, err)
		}
	}
	return f(conn)
}

// List returns the registered engines in name order.
func (r *Registry) List() []connection.DatabaseType {
	types := make([]connection.DatabaseType, 0, len(r.factories))
	for t := range r.factories {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// Ping connects, reads the server version and closes again.
func Ping(ctx context.Context, b Backend) *connection.TestResult {
	start := time.Now()
	result := &connection.TestResult{}

	if err := b.Connect(ctx); err != nil {
		result.Error = err.Error()
		return result
	}
	defer b.Close(ctx)

	version, err := b.Version(ctx)
	result.LatencyMs = time.Since(start).Milliseconds()
	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.Success = true
	result.DatabaseVersion = version
	return result
}

// Record is one dataset record and its key.
type Record struct {
	ID  string
	Doc any
}

// Records returns the records of table t in dataset order.
func Records(d *dataset.Dataset, t catalogue.Table) ([]Record, error) {
	if d == nil {
		return nil, errors.New("workload has no dataset")
	}

	out := make([]Record, 0, d.Len(t))
	switch t {
	case catalogue.TablePerson:
		for _, r := range d.Persons {
			out = append(out, Record{ID: r.ID, Doc: r})
		}
	case catalogue.TableArtist:
		for _, r := range d.Artists {
			out = append(out, Record{ID: r.ID, Doc: r})
		}
	case catalogue.TableProduct:
		for _, r := range d.Products {
			out = append(out, Record{ID: r.ID, Doc: r})
		}
	case catalogue.TableOrder:
		for _, r := range d.Orders {
			out = append(out, Record{ID: r.ID, Doc: r})
		}
	case catalogue.TableReview:
		for _, r := range d.Reviews {
			out = append(out, Record{ID: r.ID, Doc: r})
		}
	default:
		return nil, fmt.Errorf("unknown table %q", t)
	}
	return out, nil
}

// Unsupported wraps ErrUnsupportedQuery for q.
func Unsupported(t connection.DatabaseType, q catalogue.Query) error {
	return fmt.Errorf("%w: %s does not implement %s", ErrUnsupportedQuery, t, q.ID)
}
