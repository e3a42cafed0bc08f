package bmc

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/benbjohnson/immutable"
	"github.com/pkg/errors"
)

// DurationUnbounded marks a process segment that covers all remaining steps.
const DurationUnbounded = -1

// Property describes the observable condition to check for reachability:
// a named signal compared against a literal value.
type Property struct {
	Signal string
	Op     string
	Value  string
}

// String returns the string representation of the property.
func (p Property) String() string {
	return fmt.Sprintf("%s %s %s", p.Signal, p.Op, p.Value)
}

// Segment is one timed slice of the stimulus timeline. Assigns maps variable
// names to literal value strings; assignments are sticky, so each segment's
// map already carries every earlier assignment not overwritten since.
type Segment struct {
	Assigns  *immutable.SortedMap
	Duration int // steps, or DurationUnbounded
}

// Stimulus is the parsed content of a stimulus file: the property to check,
// the ordered process segments driving inputs, and the periodic clocks.
type Stimulus struct {
	Property Property
	Segments []Segment
	Clocks   map[string]int // name -> period in steps
}

// ClockNames returns the clock names in sorted order.
func (s *Stimulus) ClockNames() []string {
	a := make([]string, 0, len(s.Clocks))
	for name := range s.Clocks {
		a = append(a, name)
	}
	sort.Strings(a)
	return a
}

// propertyOps is the set of comparison operators a property may use.
var propertyOps = map[string]struct{}{
	"==": {}, "!=": {}, "<": {}, "<=": {}, ">": {}, ">=": {},
}

var propertyRegexp = regexp.MustCompile(`^(\w+)\s*([=<>!]+)\s*(\S+)$`)

// ParseStimulusFile parses the stimulus file at path.
func ParseStimulusFile(path string) (*Stimulus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open stimulus file")
	}
	defer f.Close()
	return ParseStimulus(f)
}

// ParseStimulus parses a stimulus description from r. The text is organized
// into bracketed [PROPERTY], [PROCESS] & [CLOCK] sections; blank lines and
// ";"-prefixed comments are ignored anywhere. Any line violating the active
// section's grammar is a fatal parse error reported with its line number.
func ParseStimulus(r io.Reader) (*Stimulus, error) {
	stim := &Stimulus{Clocks: make(map[string]int)}

	const (
		modeNone = iota
		modeProperty
		modeProcess
		modeClock
	)
	mode := modeNone
	sectionSeen := false
	hasProperty := false

	pending := immutable.NewSortedMap(&stringComparer{})
	sticky := immutable.NewSortedMap(&stringComparer{})

	lineNum := 0
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}

		switch line {
		case "[PROPERTY]":
			mode, sectionSeen = modeProperty, true
			continue
		case "[PROCESS]":
			mode, sectionSeen = modeProcess, true
			continue
		case "[CLOCK]":
			mode, sectionSeen = modeClock, true
			continue
		}

		switch mode {
		case modeProperty:
			if hasProperty {
				return nil, errors.Errorf("line %d: duplicate property: %q", lineNum, line)
			}
			m := propertyRegexp.FindStringSubmatch(line)
			if m == nil {
				return nil, errors.Errorf("line %d: invalid property: %q", lineNum, line)
			}
			if _, ok := propertyOps[m[2]]; !ok {
				return nil, errors.Errorf("line %d: invalid property operator %q", lineNum, m[2])
			}
			stim.Property = Property{Signal: m[1], Op: m[2], Value: m[3]}
			hasProperty = true

		case modeClock:
			name, value, ok := splitAssignment(line)
			if !ok {
				return nil, errors.Errorf("line %d: invalid clock declaration: %q", lineNum, line)
			}
			period, err := strconv.Atoi(value)
			if err != nil || period <= 0 {
				return nil, errors.Errorf("line %d: clock period must be a positive integer: %q", lineNum, line)
			}
			stim.Clocks[name] = period

		case modeProcess:
			if strings.HasPrefix(line, "#") {
				duration, err := strconv.Atoi(line[1:])
				if err != nil || duration <= 0 {
					return nil, errors.Errorf("line %d: duration marker must be a positive integer: %q", lineNum, line)
				}
				sticky = mergeAssigns(sticky, pending)
				stim.Segments = append(stim.Segments, Segment{Assigns: sticky, Duration: duration})
				pending = immutable.NewSortedMap(&stringComparer{})
				continue
			}
			name, value, ok := splitAssignment(line)
			if !ok {
				return nil, errors.Errorf("line %d: invalid process assignment: %q", lineNum, line)
			}
			pending = pending.Set(name, value)

		default:
			// Preamble text outside any section is ignored.
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read stimulus")
	}

	// An open process section, uncommitted assignments, or an entirely
	// markerless file all close with a final unbounded segment.
	if mode == modeProcess || pending.Len() > 0 || len(stim.Segments) == 0 {
		sticky = mergeAssigns(sticky, pending)
		stim.Segments = append(stim.Segments, Segment{Assigns: sticky, Duration: DurationUnbounded})
	}

	if !sectionSeen {
		return nil, errors.New("stimulus file contains no sections")
	}
	if !hasProperty {
		return nil, errors.New("stimulus file is missing a [PROPERTY] section")
	}
	return stim, nil
}

// splitAssignment splits a "name = value" line.
func splitAssignment(line string) (name, value string, ok bool) {
	i := strings.Index(line, "=")
	if i == -1 {
		return "", "", false
	}
	name, value = strings.TrimSpace(line[:i]), strings.TrimSpace(line[i+1:])
	if name == "" || value == "" {
		return "", "", false
	}
	return name, value, true
}

// mergeAssigns overlays the pending assignments onto the sticky snapshot.
func mergeAssigns(sticky, pending *immutable.SortedMap) *immutable.SortedMap {
	merged := sticky
	itr := pending.Iterator()
	for {
		k, v := itr.Next()
		if k == nil {
			return merged
		}
		merged = merged.Set(k, v)
	}
}

// stringComparer compares two strings. Implements immutable.Comparer.
type stringComparer struct{}

// Compare returns -1 if a is less than b, returns 1 if a is greater than b,
// and returns 0 if a is equal to b. Panic if a or b is not a string.
func (c *stringComparer) Compare(a, b interface{}) int {
	return strings.Compare(a.(string), b.(string))
}
