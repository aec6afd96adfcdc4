package checkout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDeliveryOptions(t *testing.T) {
	now := time.Date(2026, time.September, 1, 10, 30, 0, 0, time.UTC)

	options := DeliveryOptions(now, 3)

	assert.Len(t, options, 3)
	assert.Equal(t, "2026-09-02", options[0].Date)
	assert.Equal(t, "Wednesday, Sep 2", options[0].Label)
	assert.Equal(t, "2026-09-03", options[1].Date)
	assert.Equal(t, "2026-09-04", options[2].Date)
}

func TestTimeSlots(t *testing.T) {
	slots := TimeSlots()

	assert.Len(t, slots, 2)
	assert.Equal(t, "morning", slots[0].ID)
	assert.Equal(t, "10:00 AM - 2:00 PM", slots[0].Label)
	assert.Equal(t, "evening", slots[1].ID)
	assert.Equal(t, "4:00 PM - 8:00 PM", slots[1].Label)
}

func TestDeliveryDateLabel(t *testing.T) {
	tests := []struct {
		name     string
		date     string
		expected string
	}{
		{
			name:     "given valid date should format weekday and short month",
			date:     "2026-09-07",
			expected: "Monday, Sep 7",
		},
		{
			name:     "given unparseable date should fall back to raw value",
			date:     "someday",
			expected: "someday",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, deliveryDateLabel(test.date))
		})
	}
}
