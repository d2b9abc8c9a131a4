package timezone

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
)

func TestFormatter_Format(t *testing.T) {
	f := NewFormatter("")
	instant := time.Date(2024, 3, 4, 1, 0, 0, 0, time.UTC)

	tests := []struct {
		zone string
		want string
	}{
		{zone: "UTC", want: "Mon, 04 Mar, 2024, 01:00 AM UTC"},
		{zone: "America/New_York", want: "Sun, 03 Mar, 2024, 08:00 PM EST"},
		{zone: "Asia/Singapore", want: "Mon, 04 Mar, 2024, 09:00 AM +08"},
		{zone: "Mars/Olympus_Mons", want: "Mon, 04 Mar, 2024, 01:00 AM UTC"},
		{zone: "", want: "Mon, 04 Mar, 2024, 01:00 AM UTC"},
	}

	for _, tt := range tests {
		t.Run(tt.zone, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Format(instant, tt.zone))
		})
	}
}

func TestFormatter_CustomLayout(t *testing.T) {
	f := NewFormatter(time.RFC3339)
	instant := time.Date(2024, 3, 4, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-04T10:00:00+09:00", f.Format(instant, "Asia/Tokyo"))
}
