// Package scheduler manages study topics and their spaced-repetition
// revision schedules. A topic gets exactly one schedule of five revisions at
// fixed, cumulative intervals from its creation time; completing or moving a
// revision never reshapes the rest of the schedule.
package scheduler
