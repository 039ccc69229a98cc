package render

import (
	"testing"

	"github.com/exprkit/tmplcore/internal/engineconfig"
	"github.com/exprkit/tmplcore/internal/metrics"
	"github.com/exprkit/tmplcore/internal/value"
)

func TestScopeStackIsLexical(t *testing.T) {
	ctx := New(NewBufferedCallback(value.WidthNarrow), nil)
	ctx.SetValue("x", value.Int(1))

	ctx.EnterScope(map[string]value.InternalValue{"x": value.Int(2)})
	if v, ok := ctx.FindValue("x"); !ok {
		t.Fatal("x should be found in the inner scope")
	} else if n, _ := v.AsInt(); n != 2 {
		t.Fatalf("x = %d, want 2 (inner scope should shadow outer)", n)
	}

	ctx.LeaveScope()
	if v, ok := ctx.FindValue("x"); !ok {
		t.Fatal("x should still be found after leaving the inner scope")
	} else if n, _ := v.AsInt(); n != 1 {
		t.Fatalf("x = %d, want 1 (outer scope should be restored)", n)
	}
}

func TestFindValueMissIsNotAnError(t *testing.T) {
	ctx := New(NewBufferedCallback(value.WidthNarrow), nil)
	v, ok := ctx.FindValue("nonexistent")
	if ok {
		t.Fatal("a missing name should report ok=false")
	}
	if !v.IsEmpty() {
		t.Fatal("a missing name should resolve to the empty value")
	}
}

func TestCallDepthGuard(t *testing.T) {
	ctx := New(NewBufferedCallback(value.WidthNarrow), nil)
	ctx.MaxCallDepth = 2

	if err := ctx.EnterCall(); err != nil {
		t.Fatalf("first EnterCall should succeed: %v", err)
	}
	if err := ctx.EnterCall(); err != nil {
		t.Fatalf("second EnterCall should succeed: %v", err)
	}
	if err := ctx.EnterCall(); err != ErrCallDepthExceeded {
		t.Fatalf("third EnterCall should exceed the depth cap, got %v", err)
	}
}

func TestSetConfigSyncsCallDepthAndVerbose(t *testing.T) {
	ctx := New(NewBufferedCallback(value.WidthNarrow), nil)
	cfg := engineconfig.Default()
	cfg.MaxCallDepth = 5
	cfg.Verbose = true
	ctx.SetConfig(cfg)

	if ctx.MaxCallDepth != 5 {
		t.Fatalf("MaxCallDepth = %d, want 5", ctx.MaxCallDepth)
	}
	if !ctx.Verbose {
		t.Fatal("Verbose should follow SetConfig")
	}
	if !ctx.GetConfig().Verbose {
		t.Fatal("GetConfig should reflect SetConfig")
	}
}

func TestCloseWithoutMetricsIsANoOp(t *testing.T) {
	ctx := New(NewBufferedCallback(value.WidthNarrow), nil)
	value.Create(value.NarrowString("x"), ctx.GetPool())
	stats := ctx.Close()
	if stats.Allocations != 1 {
		t.Fatalf("Allocations = %d, want 1", stats.Allocations)
	}
}

func TestCloseLeavesAttachedMetricsSinkUsable(t *testing.T) {
	sink, err := metrics.Open(":memory:")
	if err != nil {
		t.Fatalf("metrics.Open: %v", err)
	}
	defer sink.Close()

	ctx := New(NewBufferedCallback(value.WidthNarrow), nil)
	ctx.SetMetrics(sink)
	value.Create(value.NarrowString("x"), ctx.GetPool())
	stats := ctx.Close()

	if err := sink.Record(stats, 1700000000); err != nil {
		t.Fatalf("the sink attached via SetMetrics should still accept further records: %v", err)
	}
}

func TestGlobalRangeIsRegistered(t *testing.T) {
	ctx := New(NewBufferedCallback(value.WidthNarrow), nil)
	v, ok := ctx.FindValue("range")
	if !ok {
		t.Fatal("range should be a root-scope global")
	}
	c, ok := v.AsCallable()
	if !ok || c.SpecialID != value.RangeFn {
		t.Fatal("range should resolve to the RangeFn special callable")
	}
}
