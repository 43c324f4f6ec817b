package direction

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		token string
		want  Direction
		ok    bool
	}{
		{"n", North, true},
		{"NORTH", North, true},
		{"North", North, true},
		{"e", East, true},
		{"east", East, true},
		{"S", South, true},
		{"South", South, true},
		{"w", West, true},
		{"WEST", West, true},
		{"u", Unknown, true},
		{"unknown", Unknown, true},
		{"garbage token", Unknown, false},
		{"", Unknown, false},
		{"NE", Unknown, false},
		{" n", Unknown, false},
	}

	for _, tt := range tests {
		got, ok := Parse(tt.token)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Parse(%q) = %v, %v, want %v, %v", tt.token, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParse_NamesAndAbbrevs(t *testing.T) {
	for _, d := range All() {
		for _, token := range []string{d.String(), d.Abbrev()} {
			got, ok := Parse(token)
			if !ok || got != d {
				t.Errorf("Parse(%q) = %v, %v, want %v", token, got, ok, d)
			}
		}
	}
}

func TestAngle(t *testing.T) {
	tests := []struct {
		d    Direction
		want int
		ok   bool
	}{
		{North, 0, true},
		{East, 90, true},
		{South, 180, true},
		{West, 270, true},
		{Unknown, 0, false},
	}

	for _, tt := range tests {
		got, ok := tt.d.Angle()
		if got != tt.want || ok != tt.ok {
			t.Errorf("%v.Angle() = %d, %v, want %d, %v", tt.d, got, ok, tt.want, tt.ok)
		}
	}
}

func TestRelativeTo(t *testing.T) {
	tests := []struct {
		facing, target Direction
		want           Relative
	}{
		{North, East, Right},
		{North, West, Left},
		{East, West, Behind},
		{South, South, Ahead},
		{West, North, Right},
		{North, South, Behind},
		{East, North, Left},
		{South, East, Left},
		{Unknown, North, RelativeUnknown},
		{North, Unknown, RelativeUnknown},
		{Unknown, Unknown, RelativeUnknown},
	}

	for _, tt := range tests {
		got := RelativeTo(tt.facing, tt.target)
		if got != tt.want {
			t.Errorf("RelativeTo(%v, %v) = %v, want %v", tt.facing, tt.target, got, tt.want)
		}
	}
}

func TestAbsolute(t *testing.T) {
	tests := []struct {
		facing Direction
		rel    Relative
		want   Direction
	}{
		{North, Right, East},
		{North, Left, West},
		{West, Right, North},
		{South, Behind, North},
		{East, Ahead, East},
		{Unknown, Ahead, Unknown},
		{North, RelativeUnknown, Unknown},
	}

	for _, tt := range tests {
		got := Absolute(tt.facing, tt.rel)
		if got != tt.want {
			t.Errorf("Absolute(%v, %v) = %v, want %v", tt.facing, tt.rel, got, tt.want)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	for _, facing := range All() {
		for _, target := range All() {
			rel := RelativeTo(facing, target)
			if !rel.Known() {
				t.Fatalf("RelativeTo(%v, %v) = %v, want a named direction", facing, target, rel)
			}
			if back := Absolute(facing, rel); back != target {
				t.Errorf("Absolute(%v, RelativeTo(%v, %v)) = %v, want %v", facing, facing, target, back, target)
			}
		}
		for _, rel := range AllRelative() {
			if back := RelativeTo(facing, Absolute(facing, rel)); back != rel {
				t.Errorf("RelativeTo(%v, Absolute(%v, %v)) = %v, want %v", facing, facing, rel, back, rel)
			}
		}
	}
}

func TestUnknownNeverArithmetic(t *testing.T) {
	for _, d := range All() {
		if got := RelativeTo(Unknown, d); got != RelativeUnknown {
			t.Errorf("RelativeTo(Unknown, %v) = %v", d, got)
		}
		if got := RelativeTo(d, Unknown); got != RelativeUnknown {
			t.Errorf("RelativeTo(%v, Unknown) = %v", d, got)
		}
		if got := Absolute(d, RelativeUnknown); got != Unknown {
			t.Errorf("Absolute(%v, RelativeUnknown) = %v", d, got)
		}
	}
	for _, rel := range AllRelative() {
		if got := Absolute(Unknown, rel); got != Unknown {
			t.Errorf("Absolute(Unknown, %v) = %v", rel, got)
		}
	}
	// Values outside the declared constants behave like the sentinel.
	if got := RelativeTo(Direction(42), North); got != RelativeUnknown {
		t.Errorf("RelativeTo(Direction(42), North) = %v", got)
	}
}
