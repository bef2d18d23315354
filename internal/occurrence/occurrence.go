// Package occurrence computes the next fire instant for a recurring
// schedule. All arithmetic is in UTC and the functions are pure, so a
// given input always maps to the same output instant.
package occurrence

import (
	"fmt"
	"time"

	"ScheduleEngine/internal/domain"
)

// periodDays returns the advance applied when the same-week candidate has
// already passed. Monthly is anchored to day-of-week, not day-of-month, so
// it advances by exactly four calendar weeks.
func periodDays(freq domain.Frequency) int {
	switch freq {
	case domain.FrequencyWeekly:
		return 7
	case domain.FrequencyBiweekly:
		return 14
	case domain.FrequencyMonthly:
		return 28
	}
	return 7
}

// Next returns the first instant strictly after `after` that falls on
// dayOfWeek (0=Sunday) at hour:minute UTC. When the nearest same-weekday
// occurrence is not strictly after `after`, it advances by the frequency's
// period instead.
func Next(freq domain.Frequency, dayOfWeek, hour, minute int, after time.Time) time.Time {
	after = after.UTC()
	days := (dayOfWeek - int(after.Weekday()) + 7) % 7
	candidate := time.Date(after.Year(), after.Month(), after.Day(), hour, minute, 0, 0, time.UTC).
		AddDate(0, 0, days)
	if candidate.After(after) {
		return candidate
	}
	return candidate.AddDate(0, 0, periodDays(freq))
}

// NextForSchedule applies Next to a schedule's recurrence spec.
func NextForSchedule(s *domain.Schedule, after time.Time) time.Time {
	return Next(s.Frequency, s.DayOfWeek, s.Hour, s.Minute, after)
}

// ValidateSpec rejects recurrence specs the calculator cannot interpret.
func ValidateSpec(freq domain.Frequency, dayOfWeek, hour, minute int) error {
	if !freq.Valid() {
		return fmt.Errorf("unknown frequency %q", freq)
	}
	if dayOfWeek < 0 || dayOfWeek > 6 {
		return fmt.Errorf("day_of_week must be 0-6, got %d", dayOfWeek)
	}
	if hour < 0 || hour > 23 {
		return fmt.Errorf("hour must be 0-23, got %d", hour)
	}
	if minute < 0 || minute > 59 {
		return fmt.Errorf("minute must be 0-59, got %d", minute)
	}
	return nil
}
