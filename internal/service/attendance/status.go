package attendance

import (
	"math"
	"time"

	"github.com/worklane/workforce-backend-go/internal/config"
	"github.com/worklane/workforce-backend-go/internal/domain/attendance"
)

// classifyCheckIn derives the check-in classification from the subject's
// scheduled start in local time. The grace boundary is inclusive: arriving
// exactly at start+grace still counts as present.
func classifyCheckIn(nowLocal, scheduledStart time.Time, grace time.Duration) (attendance.Status, int) {
	graceLimit := scheduledStart.Add(grace)

	if !nowLocal.After(graceLimit) {
		return attendance.StatusPresent, 0
	}

	// Lateness counts from the scheduled start, not from the grace limit.
	lateMinutes := int(math.Floor(nowLocal.Sub(scheduledStart).Minutes()))
	if lateMinutes < 0 {
		lateMinutes = 0
	}
	return attendance.StatusLate, lateMinutes
}

// workedMinutes returns the whole minutes between check-in and check-out,
// clamped at zero for clock skew.
func workedMinutes(checkIn, checkOut time.Time) int {
	mins := int(checkOut.Sub(checkIn).Minutes())
	if mins < 0 {
		return 0
	}
	return mins
}

// overtimeMinutes attributes minutes beyond the standard shift to overtime.
func overtimeMinutes(worked int, cfg config.AttendanceConfig) int {
	over := worked - cfg.StandardShiftMinutes()
	if over < 0 {
		return 0
	}
	return over
}

// settleStatus finalizes a day's status at check-out time. Very short days
// are downgraded; otherwise the check-in classification stands.
func settleStatus(checkInStatus attendance.Status, worked int, cfg config.AttendanceConfig) attendance.Status {
	if worked < cfg.VoidMinutes {
		return attendance.StatusAbsent
	}
	if worked < cfg.HalfDayMinutes() {
		return attendance.StatusHalfDay
	}
	return checkInStatus
}
