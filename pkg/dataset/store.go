// Package dataset holds the loaded books dataset for the lifetime of a
// process.
//
// A [Store] is an explicit cache cell around [books.Load]: it loads lazily on
// the first [Store.Get], serves the same immutable [books.Dataset] to every
// caller, and coalesces concurrent first loads into one read of the source.
//
// # Staleness
//
// When the cached dataset is reloaded depends on the [Policy]:
//
//   - [PolicyProcess] (default): never. The dataset lives until [Store.Invalidate]
//     or [Store.Close]; edits to the source during a run are not seen.
//   - [PolicyFingerprint]: every Get compares the source fingerprint with the
//     one recorded at load time and reloads on mismatch.
//   - [PolicyWatch]: a file watcher invalidates the cell when the source file
//     changes. Only sources backed by a file support it.
//
// Failed loads are not cached and not retried: the error is returned to the
// caller and the next Get starts a fresh load.
//
// A caller whose context ends stops waiting, but the load itself keeps
// running for the other callers that joined it.
package dataset

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/bookdash/pkg/books"
	"github.com/matzehuels/bookdash/pkg/errors"
	"github.com/matzehuels/bookdash/pkg/observability"
)

// Policy decides when a cached dataset is considered stale.
type Policy string

const (
	PolicyProcess     Policy = "process"
	PolicyFingerprint Policy = "fingerprint"
	PolicyWatch       Policy = "watch"
)

// ParsePolicy converts s into a Policy. The empty string selects
// PolicyProcess.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyProcess, nil
	case PolicyProcess, PolicyFingerprint, PolicyWatch:
		return p, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidConfig, "unknown staleness policy %q (want process, fingerprint or watch)", s)
	}
}

// FileSource is implemented by sources backed by a single file.
type FileSource interface {
	books.Source
	Path() string
}

// Options configures a Store.
type Options struct {
	Policy Policy
	Logger *log.Logger
}

// Store is a lazily initialized, concurrency-safe cache cell for one
// dataset. The Store owns the source and closes it on Close.
type Store struct {
	src    books.Source
	policy Policy
	logger *log.Logger

	mu     sync.RWMutex
	ds     *books.Dataset
	gen    uint64 // bumped by Invalidate
	loads  int
	closed bool

	group singleflight.Group
	watch *watcher
	once  sync.Once
}

// New creates a Store for src. With PolicyWatch the file watcher is started
// immediately.
func New(src books.Source, opts Options) (*Store, error) {
	if src == nil {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "dataset store needs a source")
	}
	if opts.Policy == "" {
		opts.Policy = PolicyProcess
	}
	if _, err := ParsePolicy(string(opts.Policy)); err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	s := &Store{
		src:    src,
		policy: opts.Policy,
		logger: opts.Logger,
	}

	if s.policy == PolicyWatch {
		fs, ok := src.(FileSource)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "staleness policy %q needs a file source, got %s", PolicyWatch, src.Name())
		}
		w, err := newWatcher(fs.Path(), s.Invalidate, s.logger)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "watch %s", fs.Path())
		}
		s.watch = w
	}
	return s, nil
}

// Policy returns the staleness policy.
func (s *Store) Policy() Policy {
	return s.policy
}

// Source returns the underlying source.
func (s *Store) Source() books.Source {
	return s.src
}

// Get returns the cached dataset, loading it if the cell is empty or stale.
func (s *Store) Get(ctx context.Context) (*books.Dataset, error) {
	s.mu.RLock()
	ds, gen, closed := s.ds, s.gen, s.closed
	s.mu.RUnlock()

	if closed {
		return nil, errors.New(errors.ErrCodeClosed, "dataset store is closed")
	}

	if ds != nil {
		fresh, err := s.fresh(ctx, ds)
		if err != nil {
			return nil, err
		}
		if fresh {
			observability.Cache().OnCacheHit(ctx, "dataset")
			return ds, nil
		}
		observability.Pipeline().OnStale(ctx, s.src.Name(), "fingerprint changed")
	}

	observability.Cache().OnCacheMiss(ctx, "dataset")
	return s.load(ctx, gen)
}

// Refresh discards the cached dataset and loads it again.
func (s *Store) Refresh(ctx context.Context) (*books.Dataset, error) {
	s.Invalidate()
	return s.Get(ctx)
}

// Peek returns the cached dataset without loading. It returns nil when the
// cell is empty.
func (s *Store) Peek() *books.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ds
}

// Loads returns how many times the source has been read successfully.
func (s *Store) Loads() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loads
}

// Invalidate empties the cell. A load already in flight still completes but
// its result is not cached.
func (s *Store) Invalidate() {
	s.mu.Lock()
	had := s.ds != nil
	s.ds = nil
	s.gen++
	s.mu.Unlock()

	if had {
		observability.Pipeline().OnStale(context.Background(), s.src.Name(), "invalidated")
	}
}

// Close stops the watcher, empties the cell and closes the source. Get
// fails after Close.
func (s *Store) Close() error {
	var err error
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.ds = nil
		s.mu.Unlock()

		if s.watch != nil {
			s.watch.close()
		}
		err = s.src.Close()
	})
	return err
}

func (s *Store) fresh(ctx context.Context, ds *books.Dataset) (bool, error) {
	if s.policy != PolicyFingerprint {
		return true, nil
	}
	fp, err := s.src.Fingerprint(ctx)
	if err != nil {
		if errors.GetCode(err) == "" {
			err = errors.DataUnavailable(s.src.Name(), err)
		}
		return false, err
	}
	return fp == ds.Fingerprint, nil
}

func (s *Store) load(ctx context.Context, gen uint64) (*books.Dataset, error) {
	// The shared load outlives any one caller. Loads started before an
	// Invalidate are not joined by later callers.
	lctx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(fmt.Sprint("load-", gen), func() (any, error) {
		name := s.src.Name()
		start := time.Now()
		observability.Pipeline().OnLoadStart(lctx, name)

		ds, err := books.Load(lctx, s.src)
		if err != nil {
			observability.Pipeline().OnLoadComplete(lctx, name, 0, 0, time.Since(start), err)
			return nil, err
		}
		observability.Pipeline().OnLoadComplete(lctx, name, ds.Stats.Retained, ds.Stats.Skipped, time.Since(start), nil)

		for _, skip := range ds.Stats.Skips {
			s.logger.Debug("skipped row", "row", skip.Row, "value", skip.Value)
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed {
			return nil, errors.New(errors.ErrCodeClosed, "dataset store is closed")
		}
		s.loads++
		if s.gen == gen {
			s.ds = ds
		}
		return ds, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			s.logger.Debug("joined in-flight dataset load")
		}
		return res.Val.(*books.Dataset), nil
	}
}
