package status

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

// SelectDisplayTag picks the label for a task: the first tag containing
// delimiter, otherwise the tag at fallbackIndex. Negative indices count from
// the end.
func SelectDisplayTag(tags []string, delimiter string, fallbackIndex int) (string, error) {
	if len(tags) == 0 {
		return EmptyTag, nil
	}

	for _, tag := range tags {
		if strings.Contains(tag, delimiter) {
			return tag, nil
		}
	}

	idx := fallbackIndex
	if idx < 0 {
		idx += len(tags)
	}
	if idx < 0 || idx >= len(tags) {
		return "", fmt.Errorf("%w: index %d with %d tag(s)", ErrTagIndexOutOfRange, fallbackIndex, len(tags))
	}
	return tags[idx], nil
}

// TruncateTag shortens tag to at most width terminal cells, ending in an
// ellipsis when cut. width <= 0 disables truncation.
func TruncateTag(tag string, width int) string {
	if width <= 0 {
		return tag
	}
	return runewidth.Truncate(tag, width, "…")
}
