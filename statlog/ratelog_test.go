package statlog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLog_FlushComputesMeanVariancePerVC(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rate.csv")
	log, err := NewRateLog(path)
	require.NoError(t, err)

	log.AddSample(0, 0.5)
	log.AddSample(0, 1.0)
	log.AddSample(1, 0.25)

	require.NoError(t, log.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := splitLines(string(data))
	require.Len(t, lines, 3) // header + vc0 + vc1
	assert.Equal(t, "vc,samples,mean,variance", lines[0])
	assert.Equal(t, "0,2,0.75,0.125", lines[1])
	assert.Equal(t, "1,1,0.25,NaN", lines[2])
}

func TestRateLog_FlushClearsAccumulatedSamples(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rate.csv")
	log, err := NewRateLog(path)
	require.NoError(t, err)

	log.AddSample(0, 1.0)
	require.NoError(t, log.Flush())
	assert.Empty(t, log.samples)
	require.NoError(t, log.Close())
}
