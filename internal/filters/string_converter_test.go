package filters

import (
	"strings"
	"testing"

	"github.com/exprkit/tmplcore/internal/engineconfig"
	"github.com/exprkit/tmplcore/internal/render"
	"github.com/exprkit/tmplcore/internal/value"
)

func narrowOf(s string) value.InternalValue { return value.NarrowString(s) }

func mustString(t *testing.T, v value.InternalValue) string {
	t.Helper()
	s, ok := v.AsString()
	if !ok {
		t.Fatalf("value is not a narrow string: %+v", v)
	}
	return s
}

func TestTitle(t *testing.T) {
	sc := &StringConverter{Mode: Title}
	got := mustString(t, sc.Filter(narrowOf("hello world"), nil))
	if got != "Hello World" {
		t.Fatalf("Title(%q) = %q, want %q", "hello world", got, "Hello World")
	}
}

func TestTitleIdempotent(t *testing.T) {
	sc := &StringConverter{Mode: Title}
	once := mustString(t, sc.Filter(narrowOf("hello world"), nil))
	twice := mustString(t, sc.Filter(narrowOf(once), nil))
	if twice != once {
		t.Fatalf("Title is not idempotent: %q then %q", once, twice)
	}
}

func TestTrimCollapsesInternalWhitespace(t *testing.T) {
	sc := &StringConverter{Mode: Trim}
	got := mustString(t, sc.Filter(narrowOf("  a   b  "), nil))
	if got != "a b" {
		t.Fatalf("Trim = %q, want %q", got, "a b")
	}
}

func TestWordCount(t *testing.T) {
	sc := &StringConverter{Mode: WordCount}
	result := sc.Filter(narrowOf("one two three four"), nil)
	n, ok := result.AsInt()
	if !ok || n != 4 {
		t.Fatalf("WordCount = %v, want 4", result)
	}
}

func TestUpperLowerMirror(t *testing.T) {
	upper := &StringConverter{Mode: Upper}
	lower := &StringConverter{Mode: Lower}
	s := "Hello World"
	got := mustString(t, upper.Filter(narrowOf(mustString(t, lower.Filter(narrowOf(s), nil))), nil))
	want := mustString(t, upper.Filter(narrowOf(s), nil))
	if got != want {
		t.Fatalf("upper(lower(s)) = %q, want %q", got, want)
	}
}

func TestUrlEncode(t *testing.T) {
	sc := &StringConverter{Mode: UrlEncode}
	got := mustString(t, sc.Filter(narrowOf("Hello, World!"), nil))
	if got != "Hello%2C+World%21" {
		t.Fatalf("UrlEncode = %q, want %q", got, "Hello%2C+World%21")
	}
}

func TestReplaceFirstCount(t *testing.T) {
	sc := newReplaceFilter(CallArgs{
		Keyword: map[string]value.InternalValue{
			"old":   value.NarrowString("a"),
			"new":   value.NarrowString("X"),
			"count": value.Int(1),
		},
	})
	got := mustString(t, sc.Filter(narrowOf("abcabc"), nil))
	if got != "Xbcabc" {
		t.Fatalf("Replace(count=1) = %q, want %q", got, "Xbcabc")
	}
}

func TestReplaceAll(t *testing.T) {
	sc := newReplaceFilter(CallArgs{Positional: []value.InternalValue{
		value.NarrowString("a"), value.NarrowString("X"), value.Int(0),
	}})
	got := mustString(t, sc.Filter(narrowOf("abcabc"), nil))
	if got != "XbcXbc" {
		t.Fatalf("Replace(count=0) = %q, want %q", got, "XbcXbc")
	}
}

func TestTruncateExactBoundary(t *testing.T) {
	// "The quick" sits exactly on a word boundary at index 9, so the
	// non-killwords scan finds it immediately without consuming any
	// leeway.
	sc := newTruncateFilter(CallArgs{Positional: []value.InternalValue{
		value.Int(9), value.Bool(false), value.NarrowString("..."), value.Int(2),
	}})
	got := mustString(t, sc.Filter(narrowOf("The quick brown fox"), nil))
	if got != "The quick..." {
		t.Fatalf("Truncate = %q, want %q", got, "The quick...")
	}
}

func TestTruncateKillwords(t *testing.T) {
	sc := newTruncateFilter(CallArgs{Positional: []value.InternalValue{
		value.Int(9), value.Bool(true), value.NarrowString("..."), value.Int(0),
	}})
	got := mustString(t, sc.Filter(narrowOf("The quick brown fox"), nil))
	if got != "The quick..." {
		t.Fatalf("Truncate(killwords) = %q, want %q", got, "The quick...")
	}
}

func TestTruncateShorterThanLength(t *testing.T) {
	sc := newTruncateFilter(CallArgs{Positional: []value.InternalValue{value.Int(255)}})
	got := mustString(t, sc.Filter(narrowOf("short"), nil))
	if got != "short" {
		t.Fatalf("Truncate(short) = %q, want unchanged", got)
	}
}

func TestTruncateUsesConfigDefaultsWhenArgsOmitted(t *testing.T) {
	sc := newTruncateFilter(CallArgs{})
	ctx := &Context{}
	got := mustString(t, sc.Filter(narrowOf(strings.Repeat("a", 300)), ctx))
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("Truncate with no args should fall back to the config default end, got %q", got)
	}
	if len(got) > 255+len("...")+1 {
		t.Fatalf("Truncate with no args should fall back to the config default length, got length %d", len(got))
	}
}

func TestUpperUnicodeAwareByDefault(t *testing.T) {
	sc := &StringConverter{Mode: Upper}
	got := mustString(t, sc.Filter(narrowOf("café"), nil))
	if got != "CAFÉ" {
		t.Fatalf("Upper (Unicode-aware) = %q, want %q", got, "CAFÉ")
	}
}

func TestUpperASCIIOnlyConfigLeavesNonASCIILettersAlone(t *testing.T) {
	rc := render.New(render.NewBufferedCallback(value.WidthNarrow), nil)
	cfg := engineconfig.Default()
	cfg.ASCIIOnlyCasing = true
	rc.SetConfig(cfg)
	ctx := NewFilterContext(rc)

	sc := &StringConverter{Mode: Upper}
	got := mustString(t, sc.Filter(narrowOf("café"), ctx))
	if got != "CAFé" {
		t.Fatalf("Upper (ASCII-only) = %q, want %q", got, "CAFé")
	}
}

func TestUrlEncodeHonorsExtraReservedChars(t *testing.T) {
	got := urlEncode([]rune("a~b"), "~")
	if string(got) != "a%7Eb" {
		t.Fatalf("UrlEncode with extra reserved %q = %q, want %q", "~", string(got), "a%7Eb")
	}
}

func TestTruncateScansBackIntoWord(t *testing.T) {
	// length lands inside "brown"; leeway isn't enough to reach its end,
	// so the cut backs up to the start of that word.
	sc := newTruncateFilter(CallArgs{Positional: []value.InternalValue{
		value.Int(11), value.Bool(false), value.NarrowString("..."), value.Int(1),
	}})
	got := mustString(t, sc.Filter(narrowOf("The quick brown fox"), nil))
	if got != "The quick..." {
		t.Fatalf("Truncate = %q, want %q", got, "The quick...")
	}
}
