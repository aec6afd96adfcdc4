package checkout

import (
	"fmt"
	"sync"
	"time"
)

// orderNumbers generates customer-facing order numbers from the
// submission timestamp. Two submissions landing in the same
// millisecond get a numeric suffix so numbers stay unique within a
// process.
type orderNumbers struct {
	mu        sync.Mutex
	now       func() time.Time
	lastMilli int64
	seq       int
}

func newOrderNumbers(now func() time.Time) *orderNumbers {
	if now == nil {
		now = time.Now
	}
	return &orderNumbers{now: now}
}

func (g *orderNumbers) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	milli := g.now().UnixMilli()
	if milli == g.lastMilli {
		g.seq++
	} else {
		g.lastMilli = milli
		g.seq = 0
	}

	digits := fmt.Sprintf("%06d", milli%1_000_000)
	if g.seq == 0 {
		return "EC" + digits
	}
	return fmt.Sprintf("EC%s-%d", digits, g.seq)
}
