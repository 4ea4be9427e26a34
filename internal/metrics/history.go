package metrics

// History keeps the most recent samples up to a fixed capacity.
type History struct {
	capacity int
	values   []float64
}

func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{capacity: capacity, values: make([]float64, 0, capacity)}
}

func (h *History) Push(v float64) {
	if len(h.values) == h.capacity {
		copy(h.values, h.values[1:])
		h.values = h.values[:len(h.values)-1]
	}
	h.values = append(h.values, v)
}

// Values returns a copy, oldest first.
func (h *History) Values() []float64 {
	out := make([]float64, len(h.values))
	copy(out, h.values)
	return out
}

func (h *History) Last() float64 {
	if len(h.values) == 0 {
		return 0
	}
	return h.values[len(h.values)-1]
}

func (h *History) Len() int { return len(h.values) }

func (h *History) Reset() { h.values = h.values[:0] }
