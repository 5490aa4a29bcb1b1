package compiler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mj1618/uiarec/internal/model"
	"github.com/mj1618/uiarec/internal/script"
)

// FaultKind classifies a script failure.
type FaultKind int

const (
	FaultOther FaultKind = iota
	FaultNotFound
	FaultAmbiguous
)

func (k FaultKind) String() string {
	switch k {
	case FaultNotFound:
		return "element not found"
	case FaultAmbiguous:
		return "element ambiguous"
	default:
		return "script error"
	}
}

// Fault is a failure reported by an executed script.
type Fault struct {
	Kind FaultKind
	// RecordID is the last tagged path record, empty when the script was not
	// instrumented or failed before tagging anything.
	RecordID string
	// Raw is the diagnostic text the script wrote.
	Raw string
}

// Correlatable reports whether the fault is a resolution fault that should
// map to a path record.
func (f Fault) Correlatable() bool {
	return f.Kind != FaultOther
}

// ParseFault extracts the fault reported on an instrumented script's stderr.
// The last marker line wins. Without a marker the fault is FaultOther.
func ParseFault(stderr string) Fault {
	f := Fault{Kind: FaultOther, Raw: stderr}
	for _, line := range strings.Split(stderr, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 || fields[0] != script.FaultMarker {
			continue
		}
		switch fields[1] {
		case script.FaultNotFound:
			f.Kind = FaultNotFound
		case script.FaultAmbiguous:
			f.Kind = FaultAmbiguous
		default:
			f.Kind = FaultOther
		}
		f.RecordID = ""
		if len(fields) > 2 && fields[2] != "None" {
			f.RecordID = fields[2]
		}
	}
	return f
}

// ErrCorrelation is matched by every correlation failure.
var ErrCorrelation = errors.New("fault correlation failed")

// CorrelationError reports a tagged record id that the scenario does not
// contain, meaning the script and the scenario are out of sync.
type CorrelationError struct {
	RecordID string
}

func (e *CorrelationError) Error() string {
	if e.RecordID == "" {
		return "fault correlation failed: fault carries no record id"
	}
	return fmt.Sprintf("fault correlation failed: record %s is not in the scenario", e.RecordID)
}

func (e *CorrelationError) Unwrap() error { return ErrCorrelation }

// Location is the step, action and path record a fault was traced to.
type Location struct {
	Step        *model.Step
	StepIndex   int
	Action      model.Action
	ActionIndex int
	Record      model.PathRecord
	RecordIndex int
}

func (l Location) String() string {
	return fmt.Sprintf("step %q, action %d (%s), element [%s]",
		l.Step.Name, l.ActionIndex+1, l.Action.Describe(), l.Record.FriendlyName())
}

// Correlate finds the path record with the given id anywhere in sc.
func Correlate(sc *model.Scenario, recordID string) (Location, error) {
	if recordID == "" {
		return Location{}, &CorrelationError{}
	}
	for si, st := range sc.Steps {
		for ai, a := range st.Actions {
			pa, ok := a.(model.PathAction)
			if !ok {
				continue
			}
			path := pa.Target()
			if ri, ok := path.Find(recordID); ok {
				return Location{
					Step:        st,
					StepIndex:   si,
					Action:      a,
					ActionIndex: ai,
					Record:      path.Records[ri],
					RecordIndex: ri,
				}, nil
			}
		}
	}
	return Location{}, &CorrelationError{RecordID: recordID}
}

// CorrelateFault correlates f against sc. Opaque faults return ok false and
// no error; a resolution fault whose record cannot be found is an error.
func CorrelateFault(sc *model.Scenario, f Fault) (loc Location, ok bool, err error) {
	if !f.Correlatable() {
		return Location{}, false, nil
	}
	loc, err = Correlate(sc, f.RecordID)
	if err != nil {
		return Location{}, false, err
	}
	return loc, true, nil
}

