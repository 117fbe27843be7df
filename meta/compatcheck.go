package meta

import (
	"fmt"
	"strings"
)

// CompatibleWith is the sole authority for "can plugin P handle stream S?"
// (spec.md §4.2). It implements the algorithm exactly:
//
//  1. Read MIME from meta; fail if missing or malformed.
//  2. Compare against cap.Mime ("*", "x/*", or "x/y"; wildcards literal on
//     either side of '/', case-insensitive).
//  3. For each constrained tag in cap: if the tag is unknown to the
//     check table, reject the whole capability (fail-closed). Otherwise,
//     if the meta lacks the tag, the constraint is trivially satisfied;
//     if present, dispatch on the constraint flavor.
//  4. A CapabilitySet matches iff any member capability matches.
func CompatibleWith(cap *Capability, m *Meta) bool {
	mimeInMeta, ok := m.Mime()
	if !ok {
		return false
	}
	devIdx := strings.IndexByte(mimeInMeta, '/')
	if devIdx <= 0 || devIdx == len(mimeInMeta)-1 {
		return false
	}

	if !mimeMatches(cap.Mime, mimeInMeta) {
		return false
	}

	for tag, c := range cap.Constraints {
		if !IsCheckable(tag) {
			return false
		}
		if !m.Has(tag) {
			continue // unconstrained-by-absence: spec.md §4.2 step 3
		}
		if !constraintSatisfied(tag, c, m) {
			return false
		}
	}
	return true
}

// CompatibleWithSet reports whether m matches any member of set.
func CompatibleWithSet(set CapabilitySet, m *Meta) bool {
	for _, c := range set {
		if CompatibleWith(c, m) {
			return true
		}
	}
	return false
}

func mimeMatches(pattern, mime string) bool {
	if pattern == "*" {
		return true
	}
	pIdx := strings.IndexByte(pattern, '/')
	if pIdx <= 0 || pIdx == len(pattern)-1 {
		return false
	}
	mIdx := strings.IndexByte(mime, '/')
	patternType, patternSub := pattern[:pIdx], pattern[pIdx+1:]
	mimeType, mimeSub := mime[:mIdx], mime[mIdx+1:]

	if !strings.EqualFold(patternType, mimeType) {
		return false
	}
	if patternSub == "*" {
		return true
	}
	return strings.EqualFold(patternSub, mimeSub)
}

func constraintSatisfied(tag Tag, c Constraint, m *Meta) bool {
	rawValue, ok := rawMetaValue(tag, m)
	if !ok {
		return false
	}

	switch c.Kind {
	case Fixed:
		return valuesEqual(rawValue, c.Fixed)
	case Discrete:
		for _, v := range c.Discrete {
			if valuesEqual(rawValue, v) {
				return true
			}
		}
		return false
	case Interval:
		if !IsNumeric(tag) {
			return false // string tags never match Interval
		}
		x, xok := toFloat64(rawValue)
		lo, lok := toFloat64(c.Lo)
		hi, hok := toFloat64(c.Hi)
		if !xok || !lok || !hok {
			return false
		}
		if lo > hi {
			lo, hi = hi, lo
		}
		return x >= lo && x <= hi
	default:
		return false
	}
}

// rawMetaValue fetches tag's stored dynamic value from m without requiring
// the caller to know its static Go type at compile time.
func rawMetaValue(tag Tag, m *Meta) (any, bool) {
	switch tag {
	case TagAudioChannels:
		if v, ok := Get[uint32](m, tag); ok {
			return v, true
		}
	case TagAudioSampleRate:
		if v, ok := Get[uint32](m, tag); ok {
			return v, true
		}
	case TagAudioChannelLayout, TagAudioSampleFormat, TagVideoPixelFormat, TagMime:
		if v, ok := Get[string](m, tag); ok {
			return v, true
		}
	case TagVideoWidth, TagVideoHeight:
		if v, ok := Get[uint32](m, tag); ok {
			return v, true
		}
	case TagVideoFrameRate:
		if v, ok := Get[float64](m, tag); ok {
			return v, true
		}
	case TagMediaBitrate, TagMediaDuration:
		if v, ok := Get[int64](m, tag); ok {
			return v, true
		}
	}
	return nil, false
}

func valuesEqual(a, b any) bool {
	af, aok := toFloat64(a)
	bf, bok := toFloat64(b)
	if aok && bok {
		return af == bf
	}
	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		return as == bs
	}
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}

func toFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case float32:
		return float64(x), true
	case float64:
		return x, true
	default:
		return 0, false
	}
}
