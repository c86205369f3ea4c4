// Package report renders growth results as console tables and as JSON or
// YAML documents.
package report

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

const shortHashLen = 8

// FormatValue renders value with thousands separators, followed by its
// signed difference from older when older is known: "1,234 (+34)".
func FormatValue(value int, older *int) string {
	formatted := comma(value)
	if older == nil {
		return formatted
	}

	delta := value - *older
	if delta < 0 {
		return fmt.Sprintf("%s (%s)", formatted, comma(delta))
	}

	return fmt.Sprintf("%s (+%s)", formatted, comma(delta))
}

func comma(n int) string {
	return humanize.Comma(int64(n))
}

// ShortHash returns the last eight characters of a commit hash.
func ShortHash(hash string) string {
	if len(hash) <= shortHashLen {
		return hash
	}

	return hash[len(hash)-shortHashLen:]
}
