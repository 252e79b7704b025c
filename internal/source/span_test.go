package source

import "testing"

func TestSpan_EmptyAndLen(t *testing.T) {
	tests := []struct {
		name     string
		span     Span
		wantLen  uint32
		wantZero bool
	}{
		{"normal span", Span{File: 1, Start: 10, End: 20}, 10, false},
		{"zero-length span", Span{File: 1, Start: 15, End: 15}, 0, true},
		{"span at origin", Span{File: 2, Start: 0, End: 100}, 100, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.span.Len(); got != tt.wantLen {
				t.Errorf("Len() = %d, want %d", got, tt.wantLen)
			}
			if got := tt.span.Empty(); got != tt.wantZero {
				t.Errorf("Empty() = %v, want %v", got, tt.wantZero)
			}
		})
	}
}

func TestSpan_Cover(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Span
		expected Span
	}{
		{
			name:     "b entirely inside a",
			a:        Span{File: 1, Start: 0, End: 100},
			b:        Span{File: 1, Start: 10, End: 20},
			expected: Span{File: 1, Start: 0, End: 100},
		},
		{
			name:     "b extends past a's end",
			a:        Span{File: 1, Start: 10, End: 20},
			b:        Span{File: 1, Start: 15, End: 30},
			expected: Span{File: 1, Start: 10, End: 30},
		},
		{
			name:     "b starts before a",
			a:        Span{File: 1, Start: 10, End: 20},
			b:        Span{File: 1, Start: 0, End: 15},
			expected: Span{File: 1, Start: 0, End: 20},
		},
		{
			name:     "disjoint spans still cover the gap",
			a:        Span{File: 1, Start: 0, End: 5},
			b:        Span{File: 1, Start: 50, End: 60},
			expected: Span{File: 1, Start: 0, End: 60},
		},
		{
			name:     "different files: a wins unchanged",
			a:        Span{File: 1, Start: 0, End: 5},
			b:        Span{File: 2, Start: 50, End: 60},
			expected: Span{File: 1, Start: 0, End: 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Cover(tt.b); got != tt.expected {
				t.Errorf("Cover() = %+v, want %+v", got, tt.expected)
			}
		})
	}
}

func TestSpan_IsValid(t *testing.T) {
	if (Span{}).IsValid() {
		t.Errorf("zero-value span with NoFileID should be invalid")
	}
	if !(Span{File: 1, Start: 0, End: 1}).IsValid() {
		t.Errorf("span with a real FileID should be valid")
	}
}

func TestSpan_String(t *testing.T) {
	got := Span{File: 3, Start: 4, End: 9}.String()
	want := "3:4-9"
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
