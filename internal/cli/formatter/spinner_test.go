package formatter

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinner_DrawsMessageAndClears(t *testing.T) {
	var out lockedBuffer
	s := NewSpinner(&out, "Uploading…")
	s.Start()
	s.SetMessage("Processed 1 of 2…")

	assert.Eventually(t, func() bool {
		return strings.Contains(stripANSI(out.String()), "Processed 1 of 2…")
	}, 2*time.Second, 10*time.Millisecond)

	s.Stop()
	s.Stop()
	assert.True(t, strings.HasSuffix(out.String(), "\r\033[K"))
}

func TestStartSpinner_NotAnimatedWritesNothing(t *testing.T) {
	var out lockedBuffer
	stop := StartSpinner(&out, "Fetching…", false)
	stop()
	assert.Empty(t, out.String())
}
