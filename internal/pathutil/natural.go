package pathutil

import (
	"strings"

	"github.com/maruel/natural"
)

// NaturalCompare orders strings with embedded numbers numerically
// ("page2" before "page10"). It is a total order usable with
// slices.SortFunc.
func NaturalCompare(a, b string) int {
	switch {
	case natural.Less(a, b):
		return -1
	case natural.Less(b, a):
		return 1
	default:
		return strings.Compare(a, b)
	}
}
