package ingest

import (
	"math"
	"strconv"
	"strings"
)

// IncrementSiri advances a "<n>/<token>" serial to "<n+1>/<token>". Anything
// else, including extra slashes or a non-integer n, is returned unchanged.
func IncrementSiri(siri string) string {
	num, token, ok := strings.Cut(siri, "/")
	if !ok || strings.Contains(token, "/") {
		return siri
	}
	n, err := strconv.Atoi(strings.TrimSpace(num))
	if err != nil || n == math.MaxInt {
		return siri
	}
	return strconv.Itoa(n+1) + "/" + token
}
