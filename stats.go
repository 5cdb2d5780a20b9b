package murmur

import (
	"github.com/go-openapi/strfmt"
)

// Stats is a point-in-time snapshot of a queue, taken under the queue lock
// so the fields are mutually consistent.
type Stats struct {
	// Name is the queue name given via WithName, possibly empty.
	Name string `json:"name,omitempty"`
	// CreatedAt is the construction time of the queue.
	CreatedAt strfmt.DateTime `json:"created_at"`
	// Len is the number of currently retained events.
	Len int `json:"len"`
	// BaseOffset counts events reclaimed from the front since creation.
	BaseOffset uint64 `json:"base_offset"`
	// Listeners is the number of registered listeners.
	Listeners int `json:"listeners"`
	// Pushed counts every push since creation, delivered or not.
	Pushed uint64 `json:"pushed"`
	// Dropped counts pushes that hit a queue with zero listeners.
	Dropped uint64 `json:"dropped"`
	// Reclaimed counts events removed by collection passes.
	Reclaimed uint64 `json:"reclaimed"`
}

// Stats snapshots the queue.
func (q *Queue[E]) Stats() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()
	return Stats{
		Name:       q.name,
		CreatedAt:  strfmt.DateTime(q.created),
		Len:        len(q.events),
		BaseOffset: q.base,
		Listeners:  q.cursors.Len(),
		Pushed:     q.pushed,
		Dropped:    q.dropped,
		Reclaimed:  q.reclaimed,
	}
}
