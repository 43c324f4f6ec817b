package linefollow

// Reading holds one sample of the IR sensor array, left to right.
// An entry is true when that sensor sees the line.
type Reading []bool

// Offset returns the weighted line position in [-1, 1]. Negative means the
// line is left of centre. ok is false when no sensor sees the line.
func (r Reading) Offset() (offset float64, ok bool) {
	if len(r) == 0 {
		return 0, false
	}
	if len(r) == 1 {
		return 0, r[0]
	}

	var sum float64
	var n int
	for i, on := range r {
		if !on {
			continue
		}
		// Map index 0..len-1 onto -1..1
		sum += float64(2*i)/float64(len(r)-1) - 1
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// AtNode reports whether every sensor sees the line, which marks a node.
func (r Reading) AtNode() bool {
	if len(r) == 0 {
		return false
	}
	for _, on := range r {
		if !on {
			return false
		}
	}
	return true
}

// String renders the reading as '1' and '0' characters.
func (r Reading) String() string {
	b := make([]byte, len(r))
	for i, on := range r {
		if on {
			b[i] = '1'
		} else {
			b[i] = '0'
		}
	}
	return string(b)
}

// ParseReading parses a line of '0' and '1' characters. Other characters
// (spaces, separators) are ignored.
func ParseReading(line string) Reading {
	r := make(Reading, 0, len(line))
	for _, c := range line {
		switch c {
		case '1':
			r = append(r, true)
		case '0':
			r = append(r, false)
		}
	}
	return r
}
