// Package mergesort sorts arena-backed singly-linked chains.
//
// Sort splits a chain with a slow/fast walk, sorts both halves and merges
// them. Halves at or above the parallel threshold are sorted on two
// goroutines; the halves are detached, disjoint node sets, so the only
// synchronization is the join before merging.
package mergesort

import (
	"runtime"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/smileynet/addressbook/internal/chain"
	"github.com/smileynet/addressbook/internal/logging"
)

// DefaultParallelThreshold is the sub-chain length at which halves start
// being sorted concurrently.
const DefaultParallelThreshold = 500

// Options configures a Sorter.
type Options struct {
	// ParallelThreshold is compared against the length of the sub-chain being
	// sorted, never the recursion depth. Zero or negative disables forking.
	ParallelThreshold int
	// MaxWorkers bounds the extra goroutines alive at once. Zero means
	// runtime.GOMAXPROCS(0).
	MaxWorkers int
	// Logger receives debug output. Nil means no logging.
	Logger *zap.Logger
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{ParallelThreshold: DefaultParallelThreshold}
}

// Stats counts work done by a Sorter since it was created.
type Stats struct {
	Sorts int64
	Forks int64
}

// Sorter sorts chains of T with a fixed comparator.
type Sorter[T any] struct {
	cmp       func(a, b T) int
	threshold int
	workers   *semaphore.Weighted
	log       *zap.Logger

	sorts atomic.Int64
	forks atomic.Int64
}

// New returns a Sorter ordering values by cmp.
func New[T any](cmp func(a, b T) int, opts Options) *Sorter[T] {
	s := &Sorter[T]{
		cmp:       cmp,
		threshold: opts.ParallelThreshold,
		log:       opts.Logger,
	}
	if s.log == nil {
		s.log = logging.Nop()
	}
	if s.threshold > 0 {
		n := opts.MaxWorkers
		if n <= 0 {
			n = runtime.GOMAXPROCS(0)
		}
		s.workers = semaphore.NewWeighted(int64(n))
	}
	return s
}

// Stats returns the sort and fork counters.
func (s *Sorter[T]) Stats() Stats {
	return Stats{Sorts: s.sorts.Load(), Forks: s.forks.Load()}
}

// Sort sorts the chain starting at head, which holds n nodes, and returns the
// new head. A negative n makes Sort count the chain first.
func (s *Sorter[T]) Sort(a *chain.Arena[T], head, n int) int {
	if n < 0 {
		n = a.Length(head)
	}
	before := s.forks.Load()
	head = s.sort(a, head, n)
	s.sorts.Add(1)
	s.log.Debug("chain sorted",
		zap.Int("len", n),
		zap.Int64("forks", s.forks.Load()-before))
	return head
}

func (s *Sorter[T]) sort(a *chain.Arena[T], head, n int) int {
	if head == chain.Nil || a.Next(head) == chain.Nil {
		return head
	}

	left, right := Split(a, head)
	ln := (n + 1) / 2
	rn := n - ln

	if s.workers != nil && n >= s.threshold && s.workers.TryAcquire(1) {
		// The right half runs on a pooled goroutine while this one sorts the
		// left half. With no free slot both halves stay on this goroutine, so
		// nested forks never wait on each other.
		s.forks.Add(1)
		var g errgroup.Group
		g.Go(func() error {
			defer s.workers.Release(1)
			right = s.sort(a, right, rn)
			return nil
		})
		left = s.sort(a, left, ln)
		// The forked half never fails; Wait is only the join.
		_ = g.Wait()
	} else {
		left = s.sort(a, left, ln)
		right = s.sort(a, right, rn)
	}

	return Merge(a, left, right, s.cmp)
}

// Split cuts the chain starting at head after its midpoint. The left chain
// keeps ceil(n/2) nodes. An empty or single-node chain is returned whole as
// left with a Nil right.
func Split[T any](a *chain.Arena[T], head int) (left, right int) {
	if head == chain.Nil || a.Next(head) == chain.Nil {
		return head, chain.Nil
	}

	slow, fast := head, a.Next(head)
	for fast != chain.Nil && a.Next(fast) != chain.Nil {
		slow = a.Next(slow)
		fast = a.Next(a.Next(fast))
	}

	right = a.Next(slow)
	a.SetNext(slow, chain.Nil)
	return head, right
}

// Merge relinks two sorted chains into one sorted chain and returns its head.
// On equal keys the left node comes first, which keeps the sort stable.
func Merge[T any](a *chain.Arena[T], left, right int, cmp func(a, b T) int) int {
	head, tail := chain.Nil, chain.Nil
	for left != chain.Nil && right != chain.Nil {
		var next int
		if cmp(a.Value(right), a.Value(left)) < 0 {
			next, right = right, a.Next(right)
		} else {
			next, left = left, a.Next(left)
		}
		if tail == chain.Nil {
			head = next
		} else {
			a.SetNext(tail, next)
		}
		tail = next
	}

	rest := left
	if rest == chain.Nil {
		rest = right
	}
	if tail == chain.Nil {
		return rest
	}
	a.SetNext(tail, rest)
	return head
}
