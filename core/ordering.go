package core

import (
	"sort"
	"strings"
	"time"
)

// Ordering is a single `field` / `-field` sort instruction.
type Ordering struct {
	Field     string
	Ascending bool
}

func (ord Ordering) String() string {
	if ord.Ascending {
		return ord.Field
	}
	return "-" + ord.Field
}

// ParseOrderings parses a comma separated list such as "status,-created_at".
func ParseOrderings(s string) []Ordering {
	var orderings []Ordering
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" || field == "-" {
			continue
		}
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		orderings = append(orderings, Ordering{Field: field, Ascending: !descending})
	}
	return orderings
}

// Comparator returns a negative number when a sorts before b, positive when after and 0 when equal.
type Comparator[T any] func(a, b T) int

// SortBy stable-sorts items by the given orderings. Fields missing from comparators are ignored.
func SortBy[T any](items []T, orderings []Ordering, comparators map[string]Comparator[T]) {
	if len(orderings) == 0 {
		return
	}
	sort.SliceStable(items, func(i, j int) bool {
		for _, ord := range orderings {
			cmp, ok := comparators[ord.Field]
			if !ok {
				continue
			}
			c := cmp(items[i], items[j])
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return false
	})
}

func CompareStrings(a, b string) int { return strings.Compare(strings.ToLower(a), strings.ToLower(b)) }

func CompareBools(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

func CompareNumbers[N ~int | ~int64 | ~float64](a, b N) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func CompareTimes(a, b time.Time) int { return a.Compare(b) }
