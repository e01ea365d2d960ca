package scheduler

import "time"

// RevisionIntervals are the spaced-repetition gaps, in days, between
// consecutive revisions of a topic. The first interval is measured from the
// topic's creation time, each subsequent one from the previous revision's
// scheduled date.
var RevisionIntervals = [5]int{1, 7, 15, 30, 60}

// RevisionCount is the number of revisions generated per topic.
const RevisionCount = len(RevisionIntervals)

// ScheduleDates computes the scheduled dates for all revisions of a topic
// created at the given time. Dates are cumulative: revision i is anchored to
// revision i-1's date, so the gaps between consecutive dates are exactly the
// configured intervals.
func ScheduleDates(createdAt time.Time) []time.Time {
	start := createdAt.UTC()
	dates := make([]time.Time, 0, RevisionCount)

	for i, interval := range RevisionIntervals {
		var next time.Time
		if len(dates) > 0 {
			next = dates[len(dates)-1].AddDate(0, 0, interval)
		} else if i == 0 {
			next = start.AddDate(0, 0, interval)
		} else {
			// Unreachable with a contiguous build, kept so a missing
			// anchor can never silently shift the tail of the schedule.
			next = start.AddDate(0, 0, sumIntervals(i+1))
		}
		dates = append(dates, next)
	}

	return dates
}

func sumIntervals(n int) int {
	total := 0
	for _, interval := range RevisionIntervals[:n] {
		total += interval
	}
	return total
}
