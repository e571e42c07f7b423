package minutes

import "strings"

// Normalize folds a siri or title into its lookup form, so "3/2024 " and
// "3/2024" address the same meeting. Case is folded and runs of whitespace
// become one space.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
