// SPDX-License-Identifier: MIT

package jobs

// Record is one resolved source page. A channel with several source lines
// yields several records sharing Name, ID and Category.
type Record struct {
	Name        string
	ID          string
	Category    string
	Title       string
	Description string
	IconURL     string
	ManifestURL string
}

// Accumulator collects resolved records in insertion order. It belongs to a
// single refresh and is not safe for concurrent use.
type Accumulator struct {
	records []Record
}

// Add appends r unless it has no manifest URL. It reports whether r was kept.
func (a *Accumulator) Add(r Record) bool {
	if r.ManifestURL == "" {
		return false
	}
	a.records = append(a.records, r)
	return true
}

// Records returns a copy of the accumulated records.
func (a *Accumulator) Records() []Record {
	out := make([]Record, len(a.records))
	copy(out, a.records)
	return out
}

// Len returns the number of accumulated records.
func (a *Accumulator) Len() int { return len(a.records) }
