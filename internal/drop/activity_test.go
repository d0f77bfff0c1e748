package drop

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsActive(t *testing.T) {
	dropAt := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)
	claimed := dropAt.Add(5 * time.Minute)

	tests := []struct {
		name      string
		claimedAt *time.Time
		now       time.Time
		want      bool
	}{
		{"before drop time", nil, dropAt.Add(-time.Minute), false},
		{"exactly at drop time", nil, dropAt, true},
		{"after drop time, unclaimed", nil, dropAt.Add(time.Hour), true},
		{"after drop time, claimed", &claimed, dropAt.Add(time.Hour), false},
		{"claimed stays inactive forever", &claimed, dropAt.Add(24 * time.Hour), false},
		{"claimed and before drop time", &claimed, dropAt.Add(-time.Minute), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsActive(dropAt, tt.claimedAt, tt.now))
		})
	}
}
