package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/mj1618/uiarec/internal/compiler"
	"github.com/mj1618/uiarec/internal/model"
)

func sampleScenario() *model.Scenario {
	ok := model.NewPathRecord(model.Snapshot{Title: "OK", ControlType: "Button"})
	ok.ID = "rec-ok"
	sc := model.New()
	st := sc.AddStep("Confirm")
	st.AppendAction(model.NewClickAction(model.NewPath(ok), model.ButtonLeft, false))
	st.AppendAction(model.NewSleepAction(1))
	sc.AddStep("Empty")
	return sc
}

func TestPrintYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := PrintYAML(&buf, NewScenarioResult("demo.yaml", sampleScenario())); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "file: demo.yaml") {
		t.Errorf("missing file key:\n%s", out)
	}

	var decoded map[string]interface{}
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}
	if decoded["steps"] != 2 {
		t.Errorf("steps: got %v, want 2", decoded["steps"])
	}
}

func TestPrintJSON_Compact(t *testing.T) {
	var buf bytes.Buffer
	if err := PrintJSON(&buf, NewScenarioResult("", sampleScenario())); err != nil {
		t.Fatal(err)
	}
	if bytes.Count(buf.Bytes(), []byte("\n")) > 1 {
		t.Errorf("compact output should be single line, got:\n%s", buf.String())
	}
	var decoded ScenarioResult
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded.Entries) != 4 {
		t.Errorf("entries: got %d, want 4", len(decoded.Entries))
	}
	if strings.Contains(buf.String(), `"file"`) {
		t.Error("empty file should be omitted")
	}
}

func TestFprintPretty(t *testing.T) {
	PrettyOutput = true
	defer func() { PrettyOutput = false }()

	var buf bytes.Buffer
	if err := Fprint(&buf, FormatJSON, map[string]int{"a": 1}); err != nil {
		t.Fatal(err)
	}
	if bytes.Count(buf.Bytes(), []byte("\n")) <= 1 {
		t.Errorf("pretty output should be multi-line, got:\n%s", buf.String())
	}
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"yaml", "json"} {
		if _, err := ParseFormat(s); err != nil {
			t.Errorf("ParseFormat(%q): %v", s, err)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("xml should be rejected")
	}
}

func TestNewScenarioResult(t *testing.T) {
	res := NewScenarioResult("", sampleScenario())
	if res.Steps != 2 || res.Actions != 2 {
		t.Fatalf("counts: got %d steps %d actions", res.Steps, res.Actions)
	}
	want := []struct {
		kind string
		text string
	}{
		{"step", "Confirm"},
		{"click", "click left [OK]"},
		{"sleep", "sleep 1.0s"},
		{"step", "Empty"},
	}
	for i, w := range want {
		got := res.Entries[i]
		if got.Index != i || got.Kind != w.kind || got.Text != w.text {
			t.Errorf("entry %d: got %+v, want kind=%s text=%q", i, got, w.kind, w.text)
		}
	}
	if res.Entries[2].Action != 2 {
		t.Errorf("action numbers are 1-based, got %d", res.Entries[2].Action)
	}
}

func TestNewPathResult(t *testing.T) {
	sc := sampleScenario()
	click := sc.Steps[0].Actions[0].(*model.ClickAction)
	res := NewPathResult(click.ID, click.Path)
	if res.Path != "[OK]" || len(res.Records) != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
	rec := res.Records[0]
	if rec.ID != "rec-ok" || rec.Enumeration[0] != "title='OK'" {
		t.Errorf("unexpected record %+v", rec)
	}
	if len(rec.Enumeration) != len(model.PropertyKeys()) {
		t.Errorf("enumeration lines: got %d", len(rec.Enumeration))
	}
}

func TestNewLocationResult(t *testing.T) {
	sc := sampleScenario()
	f := compiler.Fault{Kind: compiler.FaultNotFound, RecordID: "rec-ok"}
	loc, err := compiler.Correlate(sc, "rec-ok")
	if err != nil {
		t.Fatal(err)
	}
	res := NewLocationResult(f, &loc, nil)
	if res.Step != "Confirm" || res.Action != 1 || res.Element != "OK" || res.Error != "" {
		t.Errorf("unexpected result %+v", res)
	}

	miss := NewLocationResult(f, nil, errors.New("boom"))
	if miss.Error != "boom" || miss.Step != "" {
		t.Errorf("unexpected miss %+v", miss)
	}
}
