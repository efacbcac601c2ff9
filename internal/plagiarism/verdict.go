package plagiarism

import (
	"github.com/RishiKendai/overlap/internal/models"
)

// Verdict bands a uniqueness score. The bounds are on the copied share,
// 100 - uniqueness.
func Verdict(uniqueness float64) models.Verdict {
	copied := (100 - uniqueness) / 100
	if copied < 0.3 {
		return models.VerdictClean
	} else if copied < 0.6 {
		return models.VerdictSuspicious
	} else if copied < 0.85 {
		return models.VerdictHighlySuspicious
	}
	return models.VerdictNearCopy
}
