package usage

import (
	"github.com/goodtune/equtil/internal/equipment"
)

// Usage is one histogram row: how many minutes had exactly Machines
// sessions active at once.
type Usage struct {
	Machines int `json:"machines"`
	Minutes  int `json:"minutes"`
}

// CategoryUsage is the concurrency histogram for one equipment category.
// Usages are ordered by first appearance of each level in time.
type CategoryUsage struct {
	Category equipment.Category `json:"category"`
	Usages   []Usage            `json:"usages"`
}

// TotalMinutes returns the number of minutes with at least one active session.
func (c CategoryUsage) TotalMinutes() int {
	total := 0
	for _, u := range c.Usages {
		total += u.Minutes
	}
	return total
}

// PeakMachines returns the highest concurrency level observed.
func (c CategoryUsage) PeakMachines() int {
	peak := 0
	for _, u := range c.Usages {
		peak = max(peak, u.Machines)
	}
	return peak
}
