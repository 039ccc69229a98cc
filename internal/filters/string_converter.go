package filters

import (
	"strings"
	"unicode"

	"github.com/exprkit/tmplcore/internal/value"
)

// Mode selects which string transformation StringConverter performs.
type Mode uint8

const (
	Trim Mode = iota
	Title
	WordCount
	Upper
	Lower
	Replace
	Truncate
	UrlEncode
)

// StringConverter implements the fixed set of character-streaming and
// whole-string filters. Replace carries its own resolved arguments,
// bound once at construction time. Truncate's length/end/leeway stay
// nil when the caller omits them, so Filter can fall back to the
// render's engineconfig defaults rather than a value fixed before any
// RenderContext exists.
type StringConverter struct {
	Mode Mode

	// Replace
	oldStr, newStr string
	count          int64

	// Truncate
	length    *int64
	killwords bool
	end       *string
	leeway    *int64
}

func newReplaceFilter(a CallArgs) *StringConverter {
	sc := &StringConverter{Mode: Replace}
	sc.oldStr, _ = value.AsPlainString(arg(a, "old", 0, value.Empty()))
	sc.newStr, _ = value.AsPlainString(arg(a, "new", 1, value.Empty()))
	sc.count = value.ConvertToInt(arg(a, "count", 2, value.Int(0)), 0)
	return sc
}

func newTruncateFilter(a CallArgs) *StringConverter {
	sc := &StringConverter{Mode: Truncate}
	if v, ok := explicitArg(a, "length", 0); ok {
		n := value.ConvertToInt(v, 255)
		sc.length = &n
	}
	sc.killwords = arg(a, "killwords", 1, value.Bool(false)).ConvertToBool()
	if v, ok := explicitArg(a, "end", 2); ok {
		s, _ := value.AsPlainString(v)
		sc.end = &s
	}
	if v, ok := explicitArg(a, "leeway", 3); ok {
		n := value.ConvertToInt(v, 5)
		sc.leeway = &n
	}
	return sc
}

// Filter dispatches to the mode-specific transformation. Every mode
// consumes baseVal coerced to a string view preserving its width (a
// non-string value is coerced through value.Display at narrow width),
// and (except WordCount) produces a target-string of that same width.
func (sc *StringConverter) Filter(baseVal value.InternalValue, ctx *Context) value.InternalValue {
	runes, width, ok := value.StringWidthOf(baseVal)
	if !ok {
		runes, width = []rune(value.Display(baseVal)), value.WidthNarrow
	}
	cfg := ctx.Config()

	switch sc.Mode {
	case Trim:
		return value.FromTargetString(targetOf(trimAll(runes), width)).SetTemporary(true)
	case Title:
		return value.FromTargetString(targetOf(titleCase(runes, cfg.ASCIIOnlyCasing), width)).SetTemporary(true)
	case WordCount:
		return value.Int(int64(wordCount(runes))).SetTemporary(true)
	case Upper:
		return value.FromTargetString(targetOf(mapAlpha(runes, unicode.ToUpper, cfg.ASCIIOnlyCasing), width)).SetTemporary(true)
	case Lower:
		return value.FromTargetString(targetOf(mapAlpha(runes, unicode.ToLower, cfg.ASCIIOnlyCasing), width)).SetTemporary(true)
	case Replace:
		return value.FromTargetString(targetOf(replaceRunes(runes, []rune(sc.oldStr), []rune(sc.newStr), sc.count), width)).SetTemporary(true)
	case Truncate:
		length := int64(cfg.DefaultTruncateLength)
		if sc.length != nil {
			length = *sc.length
		}
		end := cfg.DefaultTruncateEnd
		if sc.end != nil {
			end = *sc.end
		}
		leeway := int64(cfg.DefaultTruncateLeeway)
		if sc.leeway != nil {
			leeway = *sc.leeway
		}
		return value.FromTargetString(targetOf(truncateRunes(runes, length, sc.killwords, []rune(end), leeway), width)).SetTemporary(true)
	case UrlEncode:
		return value.FromTargetString(targetOf(urlEncode(runes, cfg.ExtraURLReservedChars), width)).SetTemporary(true)
	default:
		return value.Empty()
	}
}

func targetOf(runes []rune, width value.Width) *value.TargetString {
	if width == value.WidthWide {
		return value.NewWideTarget(runes)
	}
	return value.NewNarrowTarget(string(runes))
}

func isAlNum(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }

// trimAll collapses internal whitespace runs to a single space and
// trims both ends, matching boost::algorithm::trim_all.
func trimAll(runes []rune) []rune {
	fields := strings.Fields(string(runes))
	return []rune(strings.Join(fields, " "))
}

// titleCase capitalizes the first alphabetic character after any
// non-alphanumeric run, via a single-bit isDelim state machine.
// asciiOnly leaves non-ASCII letters untouched instead of running them
// through Unicode's case-folding tables.
func titleCase(runes []rune, asciiOnly bool) []rune {
	out := make([]rune, len(runes))
	isDelim := true
	for i, r := range runes {
		if isDelim && unicode.IsLetter(r) {
			isDelim = false
			if asciiOnly && r >= 0x80 {
				out[i] = r
			} else {
				out[i] = unicode.ToUpper(r)
			}
			continue
		}
		isDelim = !isAlNum(r)
		out[i] = r
	}
	return out
}

// wordCount counts transitions from delimiter to alphanumeric.
func wordCount(runes []rune) int {
	n := 0
	isDelim := true
	for _, r := range runes {
		if isDelim && isAlNum(r) {
			isDelim = false
			n++
			continue
		}
		isDelim = !isAlNum(r)
	}
	return n
}

// mapAlpha applies f to every letter rune, or (when asciiOnly is set)
// only to ASCII letters, leaving the rest of the input untouched.
func mapAlpha(runes []rune, f func(rune) rune, asciiOnly bool) []rune {
	out := make([]rune, len(runes))
	for i, r := range runes {
		if unicode.IsLetter(r) && (!asciiOnly || r < 0x80) {
			out[i] = f(r)
		} else {
			out[i] = r
		}
	}
	return out
}

// replaceRunes replaces all (count==0) or the first count occurrences
// of old with new, left to right, non-overlapping.
func replaceRunes(runes, old, newr []rune, count int64) []rune {
	if len(old) == 0 {
		return runes
	}
	var out []rune
	replaced := int64(0)
	i := 0
	for i < len(runes) {
		if (count == 0 || replaced < count) && matchesAt(runes, old, i) {
			out = append(out, newr...)
			i += len(old)
			replaced++
			continue
		}
		out = append(out, runes[i])
		i++
	}
	return out
}

func matchesAt(runes, pat []rune, at int) bool {
	if at+len(pat) > len(runes) {
		return false
	}
	for i, r := range pat {
		if runes[at+i] != r {
			return false
		}
	}
	return true
}

// truncateRunes implements the length/killwords/end/leeway algorithm.
// The non-killwords scan starts exactly at index length rather than
// length-len(end), and erases straight to the end of the string
// without preserving any of the scanned leeway window; see DESIGN.md
// for why this index arithmetic was chosen over a naive reading of the
// worked example.
func truncateRunes(runes []rune, length int64, killwords bool, end []rune, leeway int64) []rune {
	if int64(len(runes)) <= length {
		return runes
	}

	if killwords {
		if int64(len(runes)) > length+leeway {
			out := append([]rune{}, runes[:length]...)
			return append(out, end...)
		}
		return runes
	}

	p := int(length)
	if leeway != 0 {
		for leeway != 0 && p < len(runes) && isAlNum(runes[p]) {
			leeway--
			p++
		}
		if p >= len(runes) {
			return runes
		}
	}

	if p < len(runes) && isAlNum(runes[p]) {
		for p > 0 && isAlNum(runes[p]) {
			p--
		}
	}

	out := append([]rune{}, runes[:p]...)
	out = []rune(strings.TrimRight(string(out), " \t\r\n"))
	return append(out, end...)
}

// urlEncode implements a fixed reserved-character percent-encoding
// scheme: space becomes '+', the named punctuation set (plus any
// caller-supplied extraReserved characters) and any code point above
// 0x7F become %XX (uppercase hex) byte sequences.
func urlEncode(runes []rune, extraReserved string) []rune {
	reserved := "+\"%-!#$&'()*,/:;=?@[]" + extraReserved
	var out []rune
	for _, r := range runes {
		switch {
		case r == ' ':
			out = append(out, '+')
		case r < 0x80 && strings.ContainsRune(reserved, r):
			out = append(out, percentEncodeByte(byte(r))...)
		case r > 0x7f:
			for _, b := range []byte(string(r)) {
				out = append(out, percentEncodeByte(b)...)
			}
		default:
			out = append(out, r)
		}
	}
	return out
}

func percentEncodeByte(b byte) []rune {
	const hex = "0123456789ABCDEF"
	return []rune{'%', rune(hex[b>>4]), rune(hex[b&0x0f])}
}
