package board

import (
	"fmt"
	"strings"

	"github.com/okian/quickdraw/internal/adapters/repository"
)

const header = "**Quickdraw Leaderboard**"

// placeholder is rendered when a channel has no recorded times yet. The
// board message always exists once a channel is reconciled, even empty.
const placeholder = "Nobody has set a time yet. Grab a play link and claim the top spot!"

// Render produces the leaderboard message body for the given entries.
// Entries are expected in final order (average asc, best asc).
func Render(entries []repository.Record) string {
	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n\n")

	if len(entries) == 0 {
		b.WriteString(placeholder)
		return b.String()
	}

	for i, rec := range entries {
		fmt.Fprintf(&b, "%d. **%s** avg %.0fms, best %.0fms\n",
			i+1, rec.DisplayName, rec.AverageMs, rec.BestMs)
	}
	return strings.TrimRight(b.String(), "\n")
}
