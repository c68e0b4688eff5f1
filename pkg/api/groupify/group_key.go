package groupify

import (
	"fmt"
	"regexp"
	"strings"
)

// GroupKey is a normalized grouping value.
type GroupKey string

var (
	_             fmt.Stringer = (*GroupKey)(nil)
	spaceSquasher              = regexp.MustCompile(`\s+`)
)

// String implements fmt.Stringer.
func (k GroupKey) String() string {
	return string(k)
}

// ParseGroupKey lower-cases s, trims it and squashes inner whitespace runs.
func ParseGroupKey(s string) GroupKey {
	s = spaceSquasher.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), " ")
	return GroupKey(s)
}
