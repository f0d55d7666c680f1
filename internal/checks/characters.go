package checks

import (
	"fmt"
	"unicode/utf8"

	"ContentGate/internal/domain"
)

// CharacterCount enforces the platform length limit for the content type.
// Short posts have a hard 280 limit; everything else a 3000 ceiling with an
// advisory once the draft passes the optimal engagement length.
func CharacterCount(body string, contentType domain.ContentType, opts Options) domain.CharacterCheck {
	opts = opts.withDefaults()
	count := utf8.RuneCountInString(body)

	result := domain.CharacterCheck{Count: count, Warnings: []string{}}
	if contentType == domain.ContentShortPost {
		result.Limit = opts.ShortPostLimit
	} else {
		result.Limit = opts.LongFormLimit
		if count > opts.LongFormAdvisory && count <= opts.LongFormLimit {
			result.Warnings = append(result.Warnings, fmt.Sprintf(
				"%d characters is past the optimal engagement length (%d), but not over the hard limit",
				count, opts.LongFormAdvisory))
		}
	}

	result.Passed = count <= result.Limit
	return result
}
