package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf)

	p.Section("Seed")
	p.Success("Created %d categories", 9)
	p.Warning("skipped %s", "x")
	p.Error("failed")
	p.Info("connecting")
	p.Muted("done")
	p.KeyValue("group buys", 4)

	out := buf.String()
	assert.Contains(t, out, "Seed")
	assert.Contains(t, out, "Created 9 categories")
	assert.Contains(t, out, "skipped x")
	assert.Contains(t, out, "failed")
	assert.Contains(t, out, "group buys:")
	assert.Contains(t, out, "4")
}
