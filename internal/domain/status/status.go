// Package status holds the sensor status summary and the chart dataset built from it.
package status

import (
	"fmt"
)

// Category names as the backend reports them.
const (
	Normal   = "normal"
	Warning  = "warning"
	Offline  = "offline"
	Disabled = "disabled"
)

// Categories lists the four status categories in chart order.
var Categories = [...]string{Normal, Warning, Offline, Disabled} //nolint:gochecknoglobals // fixed ordering

// Snapshot is a point-in-time count of sensors by health category.
// Each fetch replaces the previous snapshot wholesale.
type Snapshot struct {
	Normal   int `json:"normal"`
	Warning  int `json:"warning"`
	Offline  int `json:"offline"`
	Disabled int `json:"disabled"`
}

// Validate rejects negative counts.
func (s Snapshot) Validate() error {
	for i, v := range s.Counts() {
		if v < 0 {
			return fmt.Errorf("%w: %s=%d", ErrNegativeCount, Categories[i], v)
		}
	}
	return nil
}

// Counts returns the four counts in chart order.
func (s Snapshot) Counts() [4]int {
	return [4]int{s.Normal, s.Warning, s.Offline, s.Disabled}
}

// Total is the number of sensors across all categories.
func (s Snapshot) Total() int {
	return s.Normal + s.Warning + s.Offline + s.Disabled
}

// Count returns the count for a category name.
func (s Snapshot) Count(category string) (int, error) {
	switch category {
	case Normal:
		return s.Normal, nil
	case Warning:
		return s.Warning, nil
	case Offline:
		return s.Offline, nil
	case Disabled:
		return s.Disabled, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
}
