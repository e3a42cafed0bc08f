package bmc_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/veriword/bmc"
)

func TestParseStimulus(t *testing.T) {
	stim, err := bmc.ParseStimulus(strings.NewReader(`
; reset sequence followed by free-running input
[PROPERTY]
done == 1

[PROCESS]
rst = 1
a = 5
#2
rst = 0
#3
b = 7

[CLOCK]
clk = 1
`))
	if err != nil {
		t.Fatal(err)
	}

	t.Run("Property", func(t *testing.T) {
		if diff := cmp.Diff(bmc.Property{Signal: "done", Op: "==", Value: "1"}, stim.Property); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("Clocks", func(t *testing.T) {
		if diff := cmp.Diff(map[string]int{"clk": 1}, stim.Clocks); diff != "" {
			t.Fatal(diff)
		}
	})

	// Assignments are sticky: each segment carries every earlier assignment
	// not overwritten since, and trailing assignments close with a final
	// unbounded segment.
	t.Run("Segments", func(t *testing.T) {
		if got, want := len(stim.Segments), 3; got != want {
			t.Fatalf("unexpected segment count: %d", got)
		}
		for i, want := range []struct {
			assigns  map[string]string
			duration int
		}{
			{map[string]string{"a": "5", "rst": "1"}, 2},
			{map[string]string{"a": "5", "rst": "0"}, 3},
			{map[string]string{"a": "5", "b": "7", "rst": "0"}, bmc.DurationUnbounded},
		} {
			if diff := cmp.Diff(want.assigns, segmentAssigns(stim.Segments[i])); diff != "" {
				t.Fatalf("segment %d: %s", i, diff)
			}
			if got := stim.Segments[i].Duration; got != want.duration {
				t.Fatalf("segment %d: unexpected duration: %d", i, got)
			}
		}
	})
}

// A stimulus without duration markers yields a single unbounded segment.
func TestParseStimulus_Markerless(t *testing.T) {
	stim, err := bmc.ParseStimulus(strings.NewReader(`
[PROPERTY]
x > 3
`))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := len(stim.Segments), 1; got != want {
		t.Fatalf("unexpected segment count: %d", got)
	}
	if got := stim.Segments[0].Duration; got != bmc.DurationUnbounded {
		t.Fatalf("unexpected duration: %d", got)
	}
	if got := stim.Segments[0].Assigns.Len(); got != 0 {
		t.Fatalf("unexpected assignment count: %d", got)
	}
}

func TestStimulus_ClockNames(t *testing.T) {
	stim, err := bmc.ParseStimulus(strings.NewReader(`
[PROPERTY]
x == 1
[CLOCK]
clk_b = 2
clk_a = 1
`))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"clk_a", "clk_b"}, stim.ClockNames()); diff != "" {
		t.Fatal(diff)
	}
}

func TestParseStimulus_ErrBadInput(t *testing.T) {
	for _, tt := range []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "NoSections",
			input: "hello world",
			want:  `stimulus file contains no sections`,
		},
		{
			name:  "MissingProperty",
			input: "[PROCESS]\na = 1",
			want:  `stimulus file is missing a [PROPERTY] section`,
		},
		{
			name:  "DuplicateProperty",
			input: "[PROPERTY]\nx == 1\ny == 2",
			want:  `line 3: duplicate property: "y == 2"`,
		},
		{
			name:  "InvalidProperty",
			input: "[PROPERTY]\nx is 1",
			want:  `line 2: invalid property: "x is 1"`,
		},
		{
			name:  "InvalidPropertyOperator",
			input: "[PROPERTY]\nx => 1",
			want:  `line 2: invalid property operator "=>"`,
		},
		{
			name:  "InvalidClock",
			input: "[PROPERTY]\nx == 1\n[CLOCK]\nclk",
			want:  `line 4: invalid clock declaration: "clk"`,
		},
		{
			name:  "NonPositiveClockPeriod",
			input: "[PROPERTY]\nx == 1\n[CLOCK]\nclk = 0",
			want:  `line 4: clock period must be a positive integer: "clk = 0"`,
		},
		{
			name:  "NonIntegerClockPeriod",
			input: "[PROPERTY]\nx == 1\n[CLOCK]\nclk = fast",
			want:  `line 4: clock period must be a positive integer: "clk = fast"`,
		},
		{
			name:  "InvalidProcessAssignment",
			input: "[PROPERTY]\nx == 1\n[PROCESS]\nfoo bar",
			want:  `line 4: invalid process assignment: "foo bar"`,
		},
		{
			name:  "NonPositiveDuration",
			input: "[PROPERTY]\nx == 1\n[PROCESS]\na = 1\n#0",
			want:  `line 5: duration marker must be a positive integer: "#0"`,
		},
		{
			name:  "NonIntegerDuration",
			input: "[PROPERTY]\nx == 1\n[PROCESS]\na = 1\n#lots",
			want:  `line 5: duration marker must be a positive integer: "#lots"`,
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			_, err := bmc.ParseStimulus(strings.NewReader(tt.input))
			if err == nil || err.Error() != tt.want {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

// segmentAssigns flattens a segment's sorted assignment map for comparison.
func segmentAssigns(seg bmc.Segment) map[string]string {
	m := make(map[string]string)
	itr := seg.Assigns.Iterator()
	for {
		k, v := itr.Next()
		if k == nil {
			return m
		}
		m[k.(string)] = v.(string)
	}
}
