package checkout

import (
	"time"

	"github.com/Alturino/ecfresh/pkg/response"
)

const deliveryDateLayout = "2006-01-02"

var timeSlots = []response.TimeSlot{
	{ID: "morning", Label: "10:00 AM - 2:00 PM"},
	{ID: "evening", Label: "4:00 PM - 8:00 PM"},
}

// TimeSlots lists the selectable delivery windows.
func TimeSlots() []response.TimeSlot {
	slots := make([]response.TimeSlot, len(timeSlots))
	copy(slots, timeSlots)
	return slots
}

func timeSlotLabel(id string) string {
	for _, slot := range timeSlots {
		if slot.ID == id {
			return slot.Label
		}
	}
	return id
}

// DeliveryOptions offers the next window of delivery dates starting
// tomorrow, labeled like "Monday, Jan 2".
func DeliveryOptions(now time.Time, days int) []response.DeliveryOption {
	options := make([]response.DeliveryOption, 0, days)
	for i := 1; i <= days; i++ {
		date := now.AddDate(0, 0, i)
		options = append(options, response.DeliveryOption{
			Date:  date.Format(deliveryDateLayout),
			Label: date.Format("Monday, Jan 2"),
		})
	}
	return options
}

// deliveryDateLabel formats a yyyy-mm-dd date for the confirmation
// view. An unparseable date falls back to the raw value.
func deliveryDateLabel(date string) string {
	parsed, err := time.Parse(deliveryDateLayout, date)
	if err != nil {
		return date
	}
	return parsed.Format("Monday, Jan 2")
}
