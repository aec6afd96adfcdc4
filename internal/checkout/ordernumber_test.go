package checkout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOrderNumberFormat(t *testing.T) {
	at := time.UnixMilli(1757000123456)
	numbers := newOrderNumbers(func() time.Time { return at })

	number := numbers.Next()

	assert.Equal(t, "EC123456", number)
}

func TestOrderNumberSameMillisecondGetsSuffix(t *testing.T) {
	at := time.UnixMilli(1757000123456)
	numbers := newOrderNumbers(func() time.Time { return at })

	first := numbers.Next()
	second := numbers.Next()
	third := numbers.Next()

	assert.Equal(t, "EC123456", first)
	assert.Equal(t, "EC123456-1", second)
	assert.Equal(t, "EC123456-2", third)
}

func TestOrderNumberResetsOnNewMillisecond(t *testing.T) {
	at := time.UnixMilli(1757000123456)
	numbers := newOrderNumbers(func() time.Time { return at })

	_ = numbers.Next()
	at = at.Add(time.Millisecond)

	assert.Equal(t, "EC123457", numbers.Next())
}

func TestOrderNumberPadsShortMillis(t *testing.T) {
	at := time.UnixMilli(1757000000042)
	numbers := newOrderNumbers(func() time.Time { return at })

	assert.Equal(t, "EC000042", numbers.Next())
}
