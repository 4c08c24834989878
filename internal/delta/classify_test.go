package delta

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statsWithRatio(ratio float64) *DeltaStatistics {
	s := &DeltaStatistics{
		OriginalBytes:      1000,
		NewBytes:           1000,
		BytesChanged:       int(ratio * 1000),
		SectionsModified:   1,
		ContentChangeRatio: ratio,
	}
	return s
}

func TestClassifyStatistics_RatioBuckets(t *testing.T) {
	cases := []struct {
		ratio float64
		want  DocumentChange
	}{
		{0.01, ContentMinor},
		{0.09, ContentMinor},
		{0.10, ContentModerate}, // lower bound inclusive
		{0.39, ContentModerate},
		{0.40, ContentMajor},
		{0.79, ContentMajor},
		{0.80, Rewritten},
		{1.00, Rewritten},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ClassifyStatistics(statsWithRatio(c.ratio)),
			"ratio %.2f", c.ratio)
	}
}

func TestClassifyStatistics_NoChange(t *testing.T) {
	assert.Equal(t, NoChange, ClassifyStatistics(&DeltaStatistics{
		OriginalBytes: 100, NewBytes: 100,
	}))
}

func TestClassifyStatistics_WhitespaceOnly(t *testing.T) {
	assert.Equal(t, WhitespaceOnly, ClassifyStatistics(&DeltaStatistics{
		OriginalBytes: 100, NewBytes: 102,
		SectionsWhitespaceOnly: 2,
	}))
}

func TestClassifyStatistics_StructuralOnly(t *testing.T) {
	t.Run("moves alone", func(t *testing.T) {
		assert.Equal(t, StructuralOnly, ClassifyStatistics(&DeltaStatistics{
			OriginalBytes: 100, NewBytes: 100, SectionsMoved: 1,
		}))
	})

	t.Run("added section still structural despite byte count", func(t *testing.T) {
		s := &DeltaStatistics{
			OriginalBytes: 100, NewBytes: 150,
			SectionsAdded: 1, BytesChanged: 50,
		}
		s.finalizeRatio()
		assert.Equal(t, StructuralOnly, ClassifyStatistics(s))
	})

	t.Run("modification wins over structure", func(t *testing.T) {
		s := &DeltaStatistics{
			OriginalBytes: 100, NewBytes: 120,
			SectionsAdded: 1, SectionsModified: 1, BytesChanged: 30,
		}
		s.finalizeRatio()
		assert.Equal(t, ContentModerate, ClassifyStatistics(s))
	})
}

func TestDocumentChange_JSON(t *testing.T) {
	b, err := json.Marshal(ContentModerate)
	require.NoError(t, err)
	assert.Equal(t, `"content_moderate"`, string(b))

	var c DocumentChange
	require.NoError(t, json.Unmarshal([]byte(`"whitespace_only"`), &c))
	assert.Equal(t, WhitespaceOnly, c)
}

func TestDeltaStatistics_FinalizeRatio(t *testing.T) {
	t.Run("uses the larger document as denominator", func(t *testing.T) {
		s := &DeltaStatistics{OriginalBytes: 100, NewBytes: 400, BytesChanged: 100}
		s.finalizeRatio()
		assert.InDelta(t, 0.25, s.ContentChangeRatio, 1e-9)
	})

	t.Run("empty documents do not divide by zero", func(t *testing.T) {
		s := &DeltaStatistics{}
		s.finalizeRatio()
		assert.Zero(t, s.ContentChangeRatio)
	})
}
