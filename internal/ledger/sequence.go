package ledger

// Sequence hands out monotonically increasing identifiers starting at 1.
// A value is never handed out twice by the same Sequence.
type Sequence struct {
	last int64
}

// NewSequence returns a sequence whose first value is 1.
func NewSequence() *Sequence {
	return &Sequence{}
}

// Next returns the next identifier.
func (s *Sequence) Next() int64 {
	s.last++
	return s.last
}

// Last returns the most recently issued identifier, or 0.
func (s *Sequence) Last() int64 {
	return s.last
}
