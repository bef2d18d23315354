package occurrence

import (
	"testing"
	"time"

	"ScheduleEngine/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func utc(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func TestNext(t *testing.T) {
	// 2026-01-05 is a Monday.
	tests := []struct {
		name      string
		freq      domain.Frequency
		dayOfWeek int
		hour, min int
		after     time.Time
		want      time.Time
	}{
		{
			name: "weekly monday after tuesday rolls to next week",
			freq: domain.FrequencyWeekly, dayOfWeek: 1, hour: 9, min: 0,
			after: utc(2026, time.January, 6, 10, 0),
			want:  utc(2026, time.January, 12, 9, 0),
		},
		{
			name: "same day earlier time fires today",
			freq: domain.FrequencyWeekly, dayOfWeek: 1, hour: 9, min: 0,
			after: utc(2026, time.January, 5, 8, 0),
			want:  utc(2026, time.January, 5, 9, 0),
		},
		{
			name: "exact boundary is not strictly after",
			freq: domain.FrequencyWeekly, dayOfWeek: 1, hour: 9, min: 0,
			after: utc(2026, time.January, 5, 9, 0),
			want:  utc(2026, time.January, 12, 9, 0),
		},
		{
			name: "weekly same day later time advances 7 days",
			freq: domain.FrequencyWeekly, dayOfWeek: 1, hour: 9, min: 0,
			after: utc(2026, time.January, 5, 10, 0),
			want:  utc(2026, time.January, 12, 9, 0),
		},
		{
			name: "biweekly advances 14 days",
			freq: domain.FrequencyBiweekly, dayOfWeek: 1, hour: 9, min: 0,
			after: utc(2026, time.January, 5, 10, 0),
			want:  utc(2026, time.January, 19, 9, 0),
		},
		{
			name: "monthly advances 4 weeks keeping weekday",
			freq: domain.FrequencyMonthly, dayOfWeek: 1, hour: 9, min: 0,
			after: utc(2026, time.January, 5, 10, 0),
			want:  utc(2026, time.February, 2, 9, 0),
		},
		{
			name: "sunday is day zero",
			freq: domain.FrequencyWeekly, dayOfWeek: 0, hour: 8, min: 30,
			after: utc(2026, time.January, 10, 12, 0),
			want:  utc(2026, time.January, 11, 8, 30),
		},
		{
			name: "month boundary crossing",
			freq: domain.FrequencyWeekly, dayOfWeek: 5, hour: 23, min: 45,
			after: utc(2026, time.January, 30, 23, 50), // Friday, past fire time
			want:  utc(2026, time.February, 6, 23, 45),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Next(tt.freq, tt.dayOfWeek, tt.hour, tt.min, tt.after)
			require.Equal(t, tt.want, got)
			assert.True(t, got.After(tt.after), "next occurrence must be strictly after the reference")
			assert.Equal(t, time.Weekday(tt.dayOfWeek), got.Weekday())

			// Pure: replaying the same inputs yields the same instant.
			assert.Equal(t, got, Next(tt.freq, tt.dayOfWeek, tt.hour, tt.min, tt.after))
		})
	}
}

func TestNextAlwaysStrictlyAfter(t *testing.T) {
	after := utc(2026, time.March, 15, 0, 0)
	for _, freq := range []domain.Frequency{domain.FrequencyWeekly, domain.FrequencyBiweekly, domain.FrequencyMonthly} {
		ref := after
		for i := 0; i < 20; i++ {
			next := Next(freq, 3, 14, 30, ref)
			require.True(t, next.After(ref), "freq=%s iteration=%d", freq, i)
			ref = next
		}
	}
}

func TestNextForSchedule(t *testing.T) {
	s := &domain.Schedule{
		Frequency: domain.FrequencyWeekly,
		DayOfWeek: 1,
		Hour:      9,
	}
	after := utc(2026, time.January, 6, 10, 0)
	assert.Equal(t, Next(s.Frequency, s.DayOfWeek, s.Hour, s.Minute, after), NextForSchedule(s, after))
}

func TestValidateSpec(t *testing.T) {
	require.NoError(t, ValidateSpec(domain.FrequencyWeekly, 0, 0, 0))
	require.NoError(t, ValidateSpec(domain.FrequencyMonthly, 6, 23, 59))

	assert.Error(t, ValidateSpec(domain.Frequency("daily"), 1, 9, 0))
	assert.Error(t, ValidateSpec(domain.FrequencyWeekly, 7, 9, 0))
	assert.Error(t, ValidateSpec(domain.FrequencyWeekly, -1, 9, 0))
	assert.Error(t, ValidateSpec(domain.FrequencyWeekly, 1, 24, 0))
	assert.Error(t, ValidateSpec(domain.FrequencyWeekly, 1, 9, 60))
}
