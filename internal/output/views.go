package output

import (
	"strings"

	"github.com/mj1618/uiarec/internal/compiler"
	"github.com/mj1618/uiarec/internal/model"
)

// EntryView is one scenario row as printed by list commands.
type EntryView struct {
	Index    int    `yaml:"index"               json:"index"`
	Step     string `yaml:"step"                json:"step"`
	StepID   string `yaml:"step_id"             json:"step_id"`
	Action   int    `yaml:"action,omitempty"    json:"action,omitempty"`
	ActionID string `yaml:"action_id,omitempty" json:"action_id,omitempty"`
	Kind     string `yaml:"kind"                json:"kind"`
	Text     string `yaml:"text"                json:"text"`
}

// ScenarioResult is the output of the `list` command.
type ScenarioResult struct {
	File    string      `yaml:"file,omitempty" json:"file,omitempty"`
	Steps   int         `yaml:"steps"          json:"steps"`
	Actions int         `yaml:"actions"        json:"actions"`
	Entries []EntryView `yaml:"entries"        json:"entries"`
}

// NewScenarioResult flattens sc into rows. Action numbers are 1-based.
func NewScenarioResult(file string, sc *model.Scenario) ScenarioResult {
	res := ScenarioResult{File: file, Steps: len(sc.Steps), Entries: []EntryView{}}
	for i, e := range sc.Entries() {
		v := EntryView{Index: i, Step: e.Step.Name, StepID: e.Step.ID}
		if e.IsStep() {
			v.Kind = "step"
			v.Text = e.Step.Name
		} else {
			res.Actions++
			v.Action = e.ActionIndex + 1
			v.ActionID = e.Action.ActionID()
			v.Kind = string(e.Action.Kind())
			v.Text = e.Action.Describe()
		}
		res.Entries = append(res.Entries, v)
	}
	return res
}

// RecordView is one path record with its editable enumeration text.
type RecordView struct {
	Index       int      `yaml:"index"        json:"index"`
	ID          string   `yaml:"id"           json:"id"`
	Name        string   `yaml:"name"         json:"name"`
	Search      string   `yaml:"search"       json:"search"`
	Enumeration []string `yaml:"enumeration"  json:"enumeration"`
}

// PathResult is the output of `path show`.
type PathResult struct {
	ActionID string       `yaml:"action_id" json:"action_id"`
	Path     string       `yaml:"path"      json:"path"`
	Records  []RecordView `yaml:"records"   json:"records"`
}

// NewPathResult describes the target path of a path-bearing action.
func NewPathResult(actionID string, p model.Path) PathResult {
	res := PathResult{ActionID: actionID, Path: p.String(), Records: []RecordView{}}
	for i, r := range p.Records {
		res.Records = append(res.Records, RecordView{
			Index:       i,
			ID:          r.ID,
			Name:        r.FriendlyName(),
			Search:      r.SearchText(),
			Enumeration: strings.Split(strings.TrimSuffix(r.EnumerationText(), "\n"), "\n"),
		})
	}
	return res
}

// LocationResult is a fault traced back to the scenario.
type LocationResult struct {
	Fault    string `yaml:"fault"              json:"fault"`
	RecordID string `yaml:"record_id"          json:"record_id"`
	Step     string `yaml:"step,omitempty"     json:"step,omitempty"`
	StepID   string `yaml:"step_id,omitempty"  json:"step_id,omitempty"`
	Action   int    `yaml:"action,omitempty"   json:"action,omitempty"`
	Text     string `yaml:"text,omitempty"     json:"text,omitempty"`
	Element  string `yaml:"element,omitempty"  json:"element,omitempty"`
	Depth    int    `yaml:"depth,omitempty"    json:"depth,omitempty"`
	Location string `yaml:"location,omitempty" json:"location,omitempty"`
	Error    string `yaml:"error,omitempty"    json:"error,omitempty"`
}

// NewLocationResult renders a correlation outcome. loc may be nil.
func NewLocationResult(f compiler.Fault, loc *compiler.Location, err error) LocationResult {
	res := LocationResult{Fault: f.Kind.String(), RecordID: f.RecordID}
	if loc != nil {
		res.Step = loc.Step.Name
		res.StepID = loc.Step.ID
		res.Action = loc.ActionIndex + 1
		res.Text = loc.Action.Describe()
		res.Element = loc.Record.FriendlyName()
		res.Depth = loc.RecordIndex
		res.Location = loc.String()
	}
	if err != nil {
		res.Error = err.Error()
	}
	return res
}
