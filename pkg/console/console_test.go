package console

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diillson/cloud-snitch-map/internal/shared/types"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &m), line)
		out = append(out, m)
	}
	return out
}

func TestEventBarRows(t *testing.T) {
	_, ok := eventBarRows(nil)
	assert.False(t, ok)

	_, ok = eventBarRows([]types.EventBar{{Label: "x", Count: 0}})
	assert.False(t, ok)

	rows, ok := eventBarRows([]types.EventBar{
		{Label: "s3:ListBuckets", Count: 10},
		{Label: "sts:AssumeRole", Count: 5, Errors: 5},
	})
	require.True(t, ok)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Event", "Count", "", "Errors"}, rows[0])
	assert.Equal(t, "10", rows[1][1])
	assert.Contains(t, rows[1][2], strings.Repeat("█", 40))
	assert.Equal(t, "", rows[1][3])
	assert.Contains(t, rows[2][3], "5 (100%)")
}

func TestTableRender(t *testing.T) {
	table := NewConsole().CreateTable()
	table.AddColumn("Type")
	table.AddColumn("Label")
	table.AddRow("network", "1.2.3.0/24")
	table.AddRow("cluster", 2)

	rendered := table.Render()
	assert.Contains(t, rendered, "1.2.3.0/24")
	assert.Contains(t, rendered, "cluster")
}

func TestJSONConsole(t *testing.T) {
	var buf bytes.Buffer
	c := NewJSONConsole(&buf, "info")

	c.LogInfo("loaded %d reports", 3)
	c.LogWarning("skipped %s", "r2")
	c.Status("loading").Update("ignored at info level")

	p := c.ProgressWithTotal(2)
	p.Increment()
	p.Increment()

	table := c.CreateTable()
	table.AddColumn("Type")
	table.AddColumn("Label")
	table.AddRow("network", "1.2.3.0/24")
	assert.Equal(t, "", table.Render())

	c.DisplayEventBars("root", []types.EventBar{{Label: "ListBuckets", Count: 4, Errors: 1}})

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 6)
	assert.Equal(t, "loaded 3 reports", lines[0]["message"])
	assert.Equal(t, "info", lines[0]["level"])
	assert.Equal(t, "warn", lines[1]["level"])
	assert.Equal(t, float64(2), lines[3]["loaded"])
	assert.Equal(t, float64(2), lines[3]["total"])
	assert.Equal(t, map[string]interface{}{"Type": "network", "Label": "1.2.3.0/24"}, lines[4]["row"])
	events := lines[5]["events"].([]interface{})
	require.Len(t, events, 1)
	assert.Equal(t, float64(1), events[0].(map[string]interface{})["errors"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zerolog.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("nonsense"))
}
