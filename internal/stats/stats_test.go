package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"als/internal/detect"
)

func TestRecorderSnapshot(t *testing.T) {
	r := New()
	r.AddInputBytes(100)
	r.AddOutputBytes(40)
	r.SetCtxFallback(false)
	r.RecordPattern(detect.PatternRange)
	r.RecordPattern(detect.PatternRange)
	r.RecordDictHit()
	r.RecordDictHit()
	r.RecordDictMiss()
	r.SetColumnEncoding("a", detect.PatternRange, false)
	r.SetColumnEncoding("b", 0, true)

	snap := r.Snapshot()
	assert.Equal(t, int64(100), snap.InputBytes)
	assert.Equal(t, int64(40), snap.OutputBytes)
	assert.Equal(t, 0.4, snap.Ratio())
	assert.False(t, snap.CtxFallback)
	assert.Equal(t, int64(2), snap.PatternCounts["range"])
	assert.Equal(t, int64(2), snap.DictHits)
	assert.Equal(t, int64(1), snap.DictMisses)
	assert.Equal(t, "range", snap.ColumnEncoding["a"])
	assert.Equal(t, "raw", snap.ColumnEncoding["b"])
}

func TestSnapshotRatioZeroWhenNoInput(t *testing.T) {
	r := New()
	assert.Equal(t, float64(0), r.Snapshot().Ratio())
}
