package usage

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/goodtune/equtil/internal/equipment"
	"github.com/rs/zerolog"
)

// ErrSpanTooLong is returned when a category's sessions are spread over
// more seconds than an int64 can count.
var ErrSpanTooLong = errors.New("usage: session span exceeds the countable range")

// Analyzer computes per-category concurrency histograms.
type Analyzer struct {
	logger zerolog.Logger
}

// NewAnalyzer creates a new analyzer
func NewAnalyzer(logger zerolog.Logger) *Analyzer {
	return &Analyzer{
		logger: logger.With().Str("component", "usage-analyzer").Logger(),
	}
}

// Analyze runs Analyze and logs a summary per category.
func (a *Analyzer) Analyze(sessions []equipment.Session) ([]CategoryUsage, error) {
	started := time.Now()

	results, err := Analyze(sessions)
	if err != nil {
		a.logger.Error().Err(err).Int("sessions", len(sessions)).Msg("Analysis rejected input")
		return nil, err
	}

	for _, r := range results {
		a.logger.Debug().
			Str("category", r.Category.String()).
			Int("levels", len(r.Usages)).
			Int("active_minutes", r.TotalMinutes()).
			Int("peak_machines", r.PeakMachines()).
			Msg("Category analyzed")
	}

	a.logger.Info().
		Int("sessions", len(sessions)).
		Int("categories", len(results)).
		Dur("elapsed", time.Since(started)).
		Msg("Analysis complete")

	return results, nil
}

// Analyze groups sessions by equipment category and, for each category,
// counts how many minutes had exactly N sessions active.
//
// Each category is scanned minute by minute from its earliest start
// (truncated to the minute) to its latest end, inclusive. A session is
// active at minute t when Start <= t < End. Minutes with no active
// session are not counted. Categories appear in the order they are first
// seen in sessions; usage levels in the order they are first reached.
//
// Every session is validated before any work is done. An empty input
// yields an empty result.
func Analyze(sessions []equipment.Session) ([]CategoryUsage, error) {
	if err := equipment.ValidateAll(sessions); err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}

	var order []equipment.Category
	groups := make(map[equipment.Category][]equipment.Session)
	for _, s := range sessions {
		c := s.Equipment.Category
		if _, seen := groups[c]; !seen {
			order = append(order, c)
		}
		groups[c] = append(groups[c], s)
	}

	results := make([]CategoryUsage, 0, len(order))
	for _, c := range order {
		usages, err := histogram(groups[c])
		if err != nil {
			return nil, fmt.Errorf("analyze %s: %w", c, err)
		}
		results = append(results, CategoryUsage{
			Category: c,
			Usages:   usages,
		})
	}
	return results, nil
}

// event marks a change in the number of active sessions at a minute index
// relative to the truncated earliest start.
type event struct {
	minute int64
	delta  int
}

// histogram sweeps start and end events in minute order and credits each
// run between consecutive events to the level active during it. Index k
// stands for the cursor minStart+k minutes; the cursor stops at index
// last, the minute at or before the latest end.
func histogram(sessions []equipment.Session) ([]Usage, error) {
	base, maxEnd := bounds(sessions)

	last, err := floorMinutes(maxEnd, base)
	if err != nil {
		return nil, err
	}

	events := make([]event, 0, 2*len(sessions))
	for _, s := range sessions {
		from, err := ceilMinutes(s.Start, base)
		if err != nil {
			return nil, err
		}
		to, err := ceilMinutes(s.End, base)
		if err != nil {
			return nil, err
		}
		to = min(to, last+1)
		if from >= to {
			continue
		}
		events = append(events, event{minute: from, delta: 1}, event{minute: to, delta: -1})
	}
	slices.SortFunc(events, func(a, b event) int {
		return cmp.Compare(a.minute, b.minute)
	})

	usages := []Usage{}
	index := make(map[int]int)
	active := 0
	for i := 0; i < len(events); {
		at := events[i].minute
		for ; i < len(events) && events[i].minute == at; i++ {
			active += events[i].delta
		}
		if active == 0 || i == len(events) {
			continue
		}
		j, ok := index[active]
		if !ok {
			j = len(usages)
			index[active] = j
			usages = append(usages, Usage{Machines: active})
		}
		usages[j].Minutes += int(events[i].minute - at)
	}
	return usages, nil
}

func bounds(sessions []equipment.Session) (minStart, maxEnd time.Time) {
	minStart, maxEnd = sessions[0].Start, sessions[0].End
	for _, s := range sessions[1:] {
		if s.Start.Before(minStart) {
			minStart = s.Start
		}
		if s.End.After(maxEnd) {
			maxEnd = s.End
		}
	}
	return truncateMinute(minStart), maxEnd
}

// truncateMinute zeroes seconds and nanoseconds on the wall clock.
func truncateMinute(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, t.Location())
}

// offset returns whole seconds and the nanosecond remainder of t after
// base, where base has no sub-second part and t is not before base. Unix
// seconds are used so spans beyond the time.Duration range stay exact.
func offset(t, base time.Time) (sec, nsec int64, err error) {
	sec = t.Unix() - base.Unix()
	if sec < 0 {
		return 0, 0, ErrSpanTooLong
	}
	return sec, int64(t.Nanosecond()), nil
}

// floorMinutes returns the number of whole minutes from base to t.
func floorMinutes(t, base time.Time) (int64, error) {
	sec, _, err := offset(t, base)
	if err != nil {
		return 0, err
	}
	return sec / 60, nil
}

// ceilMinutes returns the smallest k with base+k minutes >= t.
func ceilMinutes(t, base time.Time) (int64, error) {
	sec, nsec, err := offset(t, base)
	if err != nil {
		return 0, err
	}
	k := sec / 60
	if sec%60 != 0 || nsec != 0 {
		k++
	}
	return k, nil
}
