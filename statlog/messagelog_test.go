package statlog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpinterconnect/interconnect-sim/flow"
)

func TestMessageLog_RecordsCompletionRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "message.csv")
	log, err := NewMessageLog(path)
	require.NoError(t, err)

	txn := flow.NewKey(1, 2, 7)
	msg := flow.NewMessage(7, []int{0}, []int{3}, 0, txn, nil, 100)
	msg.AddPacket(4, 100)

	require.NoError(t, log.Record(msg, 150))
	require.NoError(t, log.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := splitLines(string(data))
	require.Len(t, lines, 2)
	assert.Equal(t, "app,terminal,message,created_at,completed_at,latency,flits", lines[0])
	assert.Equal(t, "1,2,7,100,150,50,4", lines[1])
}
