package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriter_Status_PrintsIconAndMessage(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	w.Status("🧹", "Sweeping logs")

	assert.Equal(t, "🧹 Sweeping logs\n", buf.String())
}

func TestWriter_Status_NoIconIndents(t *testing.T) {
	buf := &bytes.Buffer{}
	New(buf).Status("", "detail")

	assert.Equal(t, "   detail\n", buf.String())
}

func TestWriter_Levels(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	w.Successf("deleted %d", 2)
	w.Warningf("skipped %s", "lock")
	w.Errorf("failed %s", "x")

	assert.Contains(t, buf.String(), "✅ deleted 2\n")
	assert.Contains(t, buf.String(), "skipped lock\n")
	assert.Contains(t, buf.String(), "❌ failed x\n")
}

func TestWriter_Files_RelativeToDir(t *testing.T) {
	buf := &bytes.Buffer{}
	New(buf).Files("/var/log/app", []string{"/var/log/app/old.log", "/elsewhere/x.log"})

	assert.Equal(t, "   old.log\n   ../../../elsewhere/x.log\n", buf.String())
}
