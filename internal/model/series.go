package model

// Series is a named indicator column co-indexed with a bar sequence.
// Entries without enough history are undefined; Defined[i] reports it.
type Series struct {
	Name    string
	Values  []float64
	Defined []bool
}

// NewSeries allocates an all-undefined series of length n.
func NewSeries(name string, n int) Series {
	return Series{
		Name:    name,
		Values:  make([]float64, n),
		Defined: make([]bool, n),
	}
}

// Len returns the number of entries.
func (s Series) Len() int { return len(s.Values) }

// At returns the value at i and whether it is defined.
// Out of range indexes are reported as undefined.
func (s Series) At(i int) (float64, bool) {
	if i < 0 || i >= len(s.Values) || !s.Defined[i] {
		return 0, false
	}
	return s.Values[i], true
}

// Set stores a defined value at i.
func (s Series) Set(i int, v float64) {
	s.Values[i] = v
	s.Defined[i] = true
}

// FirstDefined returns the index of the first defined entry, or -1.
func (s Series) FirstDefined() int {
	for i, ok := range s.Defined {
		if ok {
			return i
		}
	}
	return -1
}

// Nullable returns the values with undefined entries as nil, for JSON output.
func (s Series) Nullable() []*float64 {
	out := make([]*float64, len(s.Values))
	for i := range s.Values {
		if s.Defined[i] {
			v := s.Values[i]
			out[i] = &v
		}
	}
	return out
}
