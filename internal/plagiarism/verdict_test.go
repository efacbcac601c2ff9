package plagiarism

import (
	"testing"

	"github.com/RishiKendai/overlap/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestVerdict(t *testing.T) {
	tests := []struct {
		uniqueness float64
		want       models.Verdict
	}{
		{100, models.VerdictClean},
		{70.5, models.VerdictClean},
		{70, models.VerdictSuspicious},
		{45, models.VerdictSuspicious},
		{35, models.VerdictHighlySuspicious},
		{15.5, models.VerdictHighlySuspicious},
		{15, models.VerdictNearCopy},
		{0, models.VerdictNearCopy},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Verdict(tt.uniqueness), tt.uniqueness)
	}
}
