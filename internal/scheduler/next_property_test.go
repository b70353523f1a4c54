package scheduler

import (
	"math/rand"
	"testing"
	"time"

	"github.com/alexanderramin/bedside/internal/domain"
	"github.com/alexanderramin/bedside/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestComputeNext_Invariants_WeeklyChainFollowsMask walks each random weekly
// alarm forward from its own trigger and checks every hop lands on a selected
// weekday at the configured time, strictly later, and within a week.
func TestComputeNext_Invariants_WeeklyChainFollowsMask(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 200; trial++ {
		mask := domain.WeekdayMask(rng.Intn(127) + 1) // never 0
		alarm := testutil.NewWeeklyAlarm(rng.Intn(24), rng.Intn(60), mask)
		now := testutil.RefMonday.Add(time.Duration(rng.Intn(14*24*60)) * time.Minute)

		prev := now
		for hop := 0; hop < 10; hop++ {
			next := ComputeNext([]domain.Alarm{alarm}, prev)
			require.NotNil(t, next, "trial %d hop %d: mask %07b must always yield a trigger", trial, hop, mask)

			at := next.TriggerAt
			assert.True(t, at.After(prev), "trial %d hop %d: trigger must be strictly after reference", trial, hop)
			assert.LessOrEqual(t, at.Sub(prev), 7*24*time.Hour, "trial %d hop %d: next trigger within a week", trial, hop)
			assert.True(t, domain.MaskHasDay(mask, domain.WeekdayOf(at)), "trial %d hop %d: weekday must be in mask", trial, hop)
			assert.Equal(t, alarm.Hour, at.Hour())
			assert.Equal(t, alarm.Minute, at.Minute())
			assert.Zero(t, at.Second())

			prev = at.Add(time.Second)
		}
	}
}

// TestComputeNext_Invariants_MatchesBruteForce compares against a minute-by-minute
// search over the following eight days.
func TestComputeNext_Invariants_MatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 50; trial++ {
		n := rng.Intn(4) + 1
		alarms := make([]domain.Alarm, n)
		for i := range alarms {
			alarms[i] = testutil.NewWeeklyAlarm(rng.Intn(24), rng.Intn(60),
				domain.WeekdayMask(rng.Intn(128)), testutil.WithID(int64(i+1)))
			if rng.Intn(5) == 0 {
				alarms[i].Enabled = false
			}
		}
		now := testutil.RefMonday.Add(time.Duration(rng.Intn(7*24*60)) * time.Minute)

		var want *time.Time
		for m := 1; m <= 8*24*60 && want == nil; m++ {
			cand := now.Add(time.Duration(m) * time.Minute)
			for _, a := range alarms {
				if a.Enabled && domain.MaskHasDay(a.WeekdaysMask, domain.WeekdayOf(cand)) &&
					cand.Hour() == a.Hour && cand.Minute() == a.Minute {
					c := cand
					want = &c
					break
				}
			}
		}

		got := ComputeNext(alarms, now)
		if want == nil {
			assert.Nil(t, got, "trial %d", trial)
			continue
		}
		require.NotNil(t, got, "trial %d", trial)
		assert.Equal(t, *want, got.TriggerAt, "trial %d", trial)
	}
}
