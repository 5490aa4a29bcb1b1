package server

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"gopkg.in/yaml.v3"

	"github.com/mj1618/uiarec/internal/logging"
	"github.com/mj1618/uiarec/internal/model"
	"github.com/mj1618/uiarec/internal/output"
	"github.com/mj1618/uiarec/internal/script"
	"github.com/mj1618/uiarec/internal/workspace"
)

func testServer(t *testing.T) (*Server, *workspace.Workspace) {
	t.Helper()
	ws := workspace.New(workspace.Options{
		Path:   filepath.Join(t.TempDir(), "scenario.yaml"),
		Logger: logging.Discard(),
	})
	return New(ws), ws
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	handlers := map[string]func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error){
		"list_scenario": srv.handleListScenario,
		"add_step":      srv.handleAddStep,
		"remove_step":   srv.handleRemoveStep,
		"add_action":    srv.handleAddAction,
		"remove_action": srv.handleRemoveAction,
		"show_path":     srv.handleShowPath,
		"edit_path":     srv.handleEditPath,
		"compile":       srv.handleCompile,
		"run":           srv.handleRun,
		"correlate":     srv.handleCorrelate,
		"history":       srv.handleHistory,
		"record":        srv.handleRecord,
	}
	h, ok := handlers[name]
	if !ok {
		t.Fatalf("unknown tool: %s", name)
	}
	result, err := h(ctx, req)
	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func addStep(t *testing.T, srv *Server, name string) string {
	t.Helper()
	r := callTool(t, srv, "add_step", map[string]interface{}{"name": name})
	if r.IsError {
		t.Fatalf("add_step: %s", resultText(r))
	}
	var out map[string]string
	if err := yaml.Unmarshal([]byte(resultText(r)), &out); err != nil {
		t.Fatal(err)
	}
	return out["step_id"]
}

func TestStepsAndActions(t *testing.T) {
	srv, ws := testServer(t)
	stepID := addStep(t, srv, "Handshake")

	r := callTool(t, srv, "add_action", map[string]interface{}{
		"step_id": stepID, "type": "wait_for_signal", "port": float64(5051),
	})
	if r.IsError {
		t.Fatalf("add wait: %s", resultText(r))
	}
	r = callTool(t, srv, "add_action", map[string]interface{}{
		"step_id": stepID, "type": "sleep", "seconds": 0.5, "position": float64(0),
	})
	if r.IsError {
		t.Fatalf("add sleep: %s", resultText(r))
	}

	sc, err := ws.Scenario()
	if err != nil {
		t.Fatal(err)
	}
	acts := sc.Steps[0].Actions
	if len(acts) != 2 || acts[0].Kind() != model.ActionSleep || acts[1].Kind() != model.ActionWaitForSignal {
		t.Fatalf("unexpected actions %v", acts)
	}

	r = callTool(t, srv, "list_scenario", nil)
	var listing output.ScenarioResult
	if err := yaml.Unmarshal([]byte(resultText(r)), &listing); err != nil {
		t.Fatal(err)
	}
	if listing.Actions != 2 {
		t.Errorf("listing actions = %d", listing.Actions)
	}

	r = callTool(t, srv, "remove_action", map[string]interface{}{"action_id": acts[0].ActionID()})
	if r.IsError {
		t.Fatalf("remove_action: %s", resultText(r))
	}
	r = callTool(t, srv, "remove_step", map[string]interface{}{"step_id": stepID})
	if r.IsError {
		t.Fatalf("remove_step: %s", resultText(r))
	}
	r = callTool(t, srv, "remove_step", map[string]interface{}{"step_id": stepID})
	if !r.IsError {
		t.Error("removing a missing step should fail")
	}
}

func TestAddActionRejectsBadInput(t *testing.T) {
	srv, _ := testServer(t)
	stepID := addStep(t, srv, "S")
	cases := []map[string]interface{}{
		{"step_id": stepID, "type": "click"},
		{"step_id": stepID, "type": "sleep", "seconds": -1.0},
		{"step_id": stepID, "type": "send_signal", "port": float64(80)},
		{"step_id": stepID, "type": "wait_for_signal"},
		{"step_id": "missing", "type": "sleep", "seconds": 1.0},
	}
	for _, args := range cases {
		if r := callTool(t, srv, "add_action", args); !r.IsError {
			t.Errorf("%v: expected error", args)
		}
	}
}

func seedClick(t *testing.T, ws *workspace.Workspace) string {
	t.Helper()
	var id string
	err := ws.Update(func(sc *model.Scenario) error {
		desktop := model.NewPathRecord(model.Snapshot{Title: "Desktop", ControlType: "Pane"})
		ok := model.NewPathRecord(model.Snapshot{Title: "OK", ControlType: "Button"})
		ok.ID = "rec-ok"
		click := model.NewClickAction(model.NewPath(desktop, ok), model.ButtonLeft, false)
		sc.AddStep("Confirm").AppendAction(click)
		id = click.ID
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	return id
}

func TestPathTools(t *testing.T) {
	srv, ws := testServer(t)
	id := seedClick(t, ws)

	r := callTool(t, srv, "show_path", map[string]interface{}{"action_id": id})
	if r.IsError || !strings.Contains(resultText(r), "path: '[Desktop][OK]'") {
		t.Fatalf("show_path: %s", resultText(r))
	}

	r = callTool(t, srv, "edit_path", map[string]interface{}{
		"action_id": id, "index": float64(1), "text": "title='Apply'\nauto_id='apply'\n",
	})
	if r.IsError {
		t.Fatalf("edit_path: %s", resultText(r))
	}
	if !strings.Contains(resultText(r), "auto_id='apply'") {
		t.Errorf("edit result missing new property:\n%s", resultText(r))
	}

	r = callTool(t, srv, "edit_path", map[string]interface{}{
		"action_id": id, "index": float64(1), "text": "nonsense",
	})
	if !r.IsError {
		t.Error("invalid text should fail")
	}
}

func TestCompileAndCorrelate(t *testing.T) {
	srv, ws := testServer(t)
	seedClick(t, ws)

	r := callTool(t, srv, "compile", map[string]interface{}{"debug": true})
	if r.IsError || !strings.Contains(resultText(r), script.TagFunc+"('rec-ok')") {
		t.Fatalf("compile: %s", resultText(r))
	}
	r = callTool(t, srv, "compile", map[string]interface{}{"steps": []interface{}{"missing"}})
	if !r.IsError {
		t.Error("unknown step should fail")
	}

	r = callTool(t, srv, "correlate", map[string]interface{}{
		"stderr": script.FaultMarker + " " + script.FaultNotFound + " rec-ok",
	})
	if r.IsError || !strings.Contains(resultText(r), "element: OK") {
		t.Fatalf("correlate: %s", resultText(r))
	}
	r = callTool(t, srv, "correlate", map[string]interface{}{
		"stderr": script.FaultMarker + " " + script.FaultNotFound + " rec-unknown",
	})
	if !r.IsError {
		t.Error("unknown record should be reported as an error")
	}
}

func TestRecordWithoutRecorder(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "record", map[string]interface{}{"command": "status"})
	if r.IsError || !strings.Contains(resultText(r), "available: false") {
		t.Fatalf("status: %s", resultText(r))
	}
	if r := callTool(t, srv, "record", map[string]interface{}{"command": "start"}); !r.IsError {
		t.Error("start without a recorder should fail")
	}
	if r := callTool(t, srv, "record", map[string]interface{}{"command": "dance"}); !r.IsError {
		t.Error("unknown command should fail")
	}
}

func TestStringsParam(t *testing.T) {
	params := map[string]interface{}{
		"list":   []interface{}{"a", "", "b"},
		"single": "c",
		"empty":  "",
	}
	if got := stringsParam(params, "list"); len(got) != 2 || got[1] != "b" {
		t.Errorf("list: %v", got)
	}
	if got := stringsParam(params, "single"); len(got) != 1 || got[0] != "c" {
		t.Errorf("single: %v", got)
	}
	if got := stringsParam(params, "empty"); got != nil {
		t.Errorf("empty: %v", got)
	}
	if got := stringsParam(params, "missing"); got != nil {
		t.Errorf("missing: %v", got)
	}
}
