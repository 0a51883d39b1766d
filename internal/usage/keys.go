package usage

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Time windows are encoded into the key rather than handled by explicit
// rollover logic: a new day or month simply addresses a fresh key and the
// old one expires on its TTL.

const (
	dayFormat   = "2006-01-02"
	monthFormat = "2006-01"
)

func dailyKey(userID uuid.UUID, t time.Time) string {
	return fmt.Sprintf("usage:daily:%s:%s", userID, t.UTC().Format(dayFormat))
}

func monthlyKey(userID uuid.UUID, t time.Time) string {
	return fmt.Sprintf("usage:monthly:%s:%s", userID, t.UTC().Format(monthFormat))
}

func historyKey(userID uuid.UUID) string {
	return fmt.Sprintf("usage:history:%s", userID)
}

func lifetimeKey(userID uuid.UUID) string {
	return fmt.Sprintf("usage:lifetime:%s", userID)
}

// nextDailyReset returns the next UTC midnight after t.
func nextDailyReset(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
}

// nextMonthlyReset returns the first instant of the next UTC month after t.
func nextMonthlyReset(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
}
