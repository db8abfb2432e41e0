package status

import "slices"

// DatasetLabel names the single series of the status pie.
const DatasetLabel = "Sensor Status"

var (
	labels = []string{"Normal", "Warning", "Offline", "Disabled"} //nolint:gochecknoglobals // fixed chart labels
	colors = []string{"#4caf50", "#ff9800", "#f44336", "#9e9e9e"} //nolint:gochecknoglobals // fixed chart colors
)

// Dataset is the categorical input a chart renderer consumes.
type Dataset struct {
	Label  string   `json:"label"`
	Labels []string `json:"labels"`
	Values []int    `json:"values"`
	Colors []string `json:"colors"`
}

// DatasetFrom builds the pie dataset for a snapshot. Equal snapshots give equal datasets.
func DatasetFrom(s Snapshot) Dataset {
	counts := s.Counts()
	return Dataset{
		Label:  DatasetLabel,
		Labels: slices.Clone(labels),
		Values: counts[:],
		Colors: slices.Clone(colors),
	}
}

// Equal reports whether two datasets would draw the same chart.
func (d Dataset) Equal(o Dataset) bool {
	return d.Label == o.Label &&
		slices.Equal(d.Labels, o.Labels) &&
		slices.Equal(d.Values, o.Values) &&
		slices.Equal(d.Colors, o.Colors)
}

// Total sums the dataset values.
func (d Dataset) Total() int {
	total := 0
	for _, v := range d.Values {
		total += v
	}
	return total
}
