package value

import (
	"sync"

	"github.com/google/uuid"
)

// ValueID is a handle into a pool's bookkeeping tables. It is not a
// storage index — Go's garbage collector owns the actual memory of any
// InternalValue — it exists so that parent/child lifetime chains
// (SetParentData / ShouldExtendLifetime) can be recorded and asserted
// against by reference instead of by copying.
type ValueID uint64

// Stats summarizes one render invocation's pool activity.
type Stats struct {
	SessionID    uuid.UUID
	Allocations  int
	TempReuses   int
	ParentLinks  int
}

// Pool is the InternalValueDataPool: an arena owning the id-space and
// parent/child bookkeeping for every value produced during one render.
// All values sharing a Pool share that render's lifetime; the Pool is
// released (Close) when the render completes. A Pool must not be used
// from more than one render invocation and must not be shared across
// renders, though separate renders may run concurrently each with
// their own Pool.
type Pool struct {
	mu        sync.Mutex
	session   uuid.UUID
	next      uint64
	parents   map[ValueID]ValueID
	allocs    int
	reuses    int
	closed    bool
}

// NewPool allocates a fresh arena for one render invocation.
func NewPool() *Pool {
	return &Pool{
		session: uuid.New(),
		parents: make(map[ValueID]ValueID),
	}
}

// Session returns the render-invocation id stamped on this pool, used to
// correlate diagnostics and metrics rows across concurrent renders.
func (p *Pool) Session() uuid.UUID { return p.session }

// NewID hands out a fresh handle, cheap enough to call for every
// intermediate value without reference-counting scalars.
func (p *Pool) NewID() ValueID {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.next++
	p.allocs++
	return ValueID(p.next)
}

// SetParent records that child's lifetime is subsumed by parent's. This
// is the arena-level counterpart to InternalValue.SetParentData: the
// struct-level field lets a value carry its own parent handle around,
// this ledger lets the pool itself answer "what does this id depend on"
// and lets Stats.ParentLinks report a real count. SubscriptExpression
// calls both when a subscript result extends its base's lifetime.
func (p *Pool) SetParent(child, parent ValueID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.parents[child] = parent
}

// Parent reports the recorded parent of id, if any.
func (p *Pool) Parent(id ValueID) (ValueID, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	parent, ok := p.parents[id]
	return parent, ok
}

// MarkReuse records that a temporary operand's storage was reused as an
// operation's result rather than allocating a fresh id.
func (p *Pool) MarkReuse() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reuses++
}

// Stats snapshots the pool's counters, e.g. for a metrics sink at Close.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{
		SessionID:   p.session,
		Allocations: p.allocs,
		TempReuses:  p.reuses,
		ParentLinks: len(p.parents),
	}
}

// Close marks the pool as released. Values created from a closed pool
// must not escape into a later render; callers own that invariant. Close
// does not reject a second call: it returns the counters again.
func (p *Pool) Close() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	stats := Stats{
		SessionID:   p.session,
		Allocations: p.allocs,
		TempReuses:  p.reuses,
		ParentLinks: len(p.parents),
	}
	p.closed = true
	return stats
}

// Closed reports whether Close has already run.
func (p *Pool) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}
