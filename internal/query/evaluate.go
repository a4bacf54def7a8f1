package query

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/erpsync/ebsconn/internal/model"
)

// Matches evaluates f against an assembled entity. It is the framework-level
// filter applied when no native predicate could be produced. A nil filter
// matches everything.
func Matches(f Filter, e model.Entity) bool {
	if f == nil {
		return true
	}
	switch n := f.(type) {
	case EqualsFilter:
		return matchEquals(n, e)
	case CompareFilter:
		return anyValue(e, n.Attr, func(s string) bool {
			return compareOrdered(s, ValueString(n.Value), n.Op)
		})
	case StringFilter:
		needle := strings.ToLower(n.Value)
		return anyValue(e, n.Attr, func(s string) bool {
			s = strings.ToLower(s)
			switch n.Op {
			case StringStartsWith:
				return strings.HasPrefix(s, needle)
			case StringEndsWith:
				return strings.HasSuffix(s, needle)
			default:
				return strings.Contains(s, needle)
			}
		})
	case ContainsAllFilter:
		for _, want := range n.Values {
			ws := ValueString(want)
			if !anyValue(e, n.Attr, func(s string) bool { return valuesEqual(s, ws) }) {
				return false
			}
		}
		return true
	case PresenceFilter:
		return anyValue(e, n.Attr, func(string) bool { return true })
	case AndFilter:
		return Matches(n.Left, e) && Matches(n.Right, e)
	case OrFilter:
		return Matches(n.Left, e) || Matches(n.Right, e)
	case NotFilter:
		return !Matches(n.Inner, e)
	}
	return false
}

func matchEquals(f EqualsFilter, e model.Entity) bool {
	if len(f.Values) == 1 {
		want := ValueString(f.Values[0])
		return anyValue(e, f.Attr, func(s string) bool { return valuesEqual(s, want) })
	}

	a, ok := e.Attr(f.Attr)
	if !ok || len(a.Values) != len(f.Values) {
		return false
	}
	for _, want := range f.Values {
		ws := ValueString(want)
		if !anyValue(e, f.Attr, func(s string) bool { return valuesEqual(s, ws) }) {
			return false
		}
	}
	return true
}

func anyValue(e model.Entity, attr string, pred func(string) bool) bool {
	a, ok := e.Attr(attr)
	if !ok {
		return false
	}
	for _, v := range a.Values {
		if v == nil {
			continue
		}
		if pred(ValueString(v)) {
			return true
		}
	}
	return false
}

func valuesEqual(a, b string) bool {
	if a == b {
		return true
	}
	na, errA := strconv.ParseFloat(a, 64)
	nb, errB := strconv.ParseFloat(b, 64)
	return errA == nil && errB == nil && na == nb
}

// compareOrdered compares numerically when both sides are numbers and
// lexicographically otherwise (ISO dates order correctly as text).
func compareOrdered(a, b string, op CompareOp) bool {
	var cmp int
	na, errA := strconv.ParseFloat(a, 64)
	nb, errB := strconv.ParseFloat(b, 64)
	if errA == nil && errB == nil {
		switch {
		case na < nb:
			cmp = -1
		case na > nb:
			cmp = 1
		}
	} else {
		cmp = strings.Compare(a, b)
	}

	switch op {
	case CompareGt:
		return cmp > 0
	case CompareLte:
		return cmp <= 0
	case CompareGte:
		return cmp >= 0
	default:
		return cmp < 0
	}
}

// ValueString renders an attribute value the way filters compare it.
func ValueString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format("2006-01-02")
		}
		return x.Format("2006-01-02 15:04:05")
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprintf("%v", x)
	}
}
