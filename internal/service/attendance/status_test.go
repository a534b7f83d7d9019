package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/worklane/workforce-backend-go/internal/config"
	"github.com/worklane/workforce-backend-go/internal/domain/attendance"
)

func testCfg() config.AttendanceConfig {
	return config.AttendanceConfig{
		GraceMinutes:       10,
		StandardShiftHours: 8,
		HalfDayHours:       4,
		VoidMinutes:        15,
		OfficeRadiusMeters: 250,
	}
}

func localTime(hour, minute int) time.Time {
	return time.Date(2026, 3, 2, hour, minute, 0, 0, time.UTC)
}

func TestClassifyCheckIn(t *testing.T) {
	scheduledStart := localTime(9, 0)
	grace := 10 * time.Minute

	tests := []struct {
		name         string
		now          time.Time
		wantStatus   attendance.Status
		wantLateMins int
	}{
		{
			name:         "before scheduled start",
			now:          localTime(8, 45),
			wantStatus:   attendance.StatusPresent,
			wantLateMins: 0,
		},
		{
			name:         "within grace period",
			now:          localTime(9, 5),
			wantStatus:   attendance.StatusPresent,
			wantLateMins: 0,
		},
		{
			name:         "exactly at grace boundary counts as present",
			now:          localTime(9, 10),
			wantStatus:   attendance.StatusPresent,
			wantLateMins: 0,
		},
		{
			name:         "one minute past grace is late",
			now:          localTime(9, 11),
			wantStatus:   attendance.StatusLate,
			wantLateMins: 11,
		},
		{
			name:         "late minutes count from scheduled start",
			now:          localTime(9, 25),
			wantStatus:   attendance.StatusLate,
			wantLateMins: 25,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, lateMins := classifyCheckIn(tt.now, scheduledStart, grace)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantLateMins, lateMins)
		})
	}
}

func TestWorkedMinutes(t *testing.T) {
	checkIn := localTime(9, 0)

	assert.Equal(t, 480, workedMinutes(checkIn, localTime(17, 0)))
	assert.Equal(t, 30, workedMinutes(checkIn, localTime(9, 30)))
	assert.Equal(t, 0, workedMinutes(checkIn, localTime(8, 0)), "clock skew clamps to zero")
}

func TestOvertimeMinutes(t *testing.T) {
	cfg := testCfg()

	assert.Equal(t, 0, overtimeMinutes(480, cfg), "exactly standard shift")
	assert.Equal(t, 0, overtimeMinutes(240, cfg))
	assert.Equal(t, 90, overtimeMinutes(570, cfg))
}

func TestSettleStatus(t *testing.T) {
	cfg := testCfg()

	tests := []struct {
		name          string
		checkInStatus attendance.Status
		worked        int
		want          attendance.Status
	}{
		{"full day keeps present", attendance.StatusPresent, 480, attendance.StatusPresent},
		{"full day keeps late", attendance.StatusLate, 480, attendance.StatusLate},
		{"below half day threshold downgrades", attendance.StatusPresent, 120, attendance.StatusHalfDay},
		{"exactly half day keeps status", attendance.StatusPresent, 240, attendance.StatusPresent},
		{"below void threshold is absent", attendance.StatusPresent, 10, attendance.StatusAbsent},
		{"exactly void threshold is half day", attendance.StatusLate, 15, attendance.StatusHalfDay},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, settleStatus(tt.checkInStatus, tt.worked, cfg))
		})
	}
}
