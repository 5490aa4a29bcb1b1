package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mj1618/uiarec/internal/logging"
	"github.com/mj1618/uiarec/internal/model"
	"github.com/mj1618/uiarec/internal/output"
	"github.com/mj1618/uiarec/internal/script"
	"github.com/mj1618/uiarec/internal/workspace"
)

// testEnv sets up a temp scenario file, workspace and router.
func testEnv(t *testing.T, token string) (*workspace.Workspace, http.Handler) {
	t.Helper()
	ws := workspace.New(workspace.Options{
		Path:   filepath.Join(t.TempDir(), "scenario.yaml"),
		Logger: logging.Discard(),
	})
	return ws, NewRouter(ws, token, logging.Discard())
}

func seed(t *testing.T, ws *workspace.Workspace) (stepID, clickID string) {
	t.Helper()
	err := ws.Update(func(sc *model.Scenario) error {
		desktop := model.NewPathRecord(model.Snapshot{Title: "Desktop", ControlType: "Pane"})
		ok := model.NewPathRecord(model.Snapshot{Title: "OK", ControlType: "Button"})
		ok.ID = "rec-ok"
		click := model.NewClickAction(model.NewPath(desktop, ok), model.ButtonLeft, false)
		st := sc.AddStep("Confirm")
		st.AppendAction(click)
		stepID, clickID = st.ID, click.ID
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	return stepID, clickID
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestAuth(t *testing.T) {
	_, router := testEnv(t, "secret")

	w := do(t, router, http.MethodGet, "/scenario", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status = %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/scenario", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("with token: status = %d", w.Code)
	}
}

func TestStepAndActionLifecycle(t *testing.T) {
	ws, router := testEnv(t, "")

	w := do(t, router, http.MethodPost, "/steps", `{"name":"Wait for peer"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create step: status = %d, body = %s", w.Code, w.Body.String())
	}
	var step stepResponse
	if err := json.Unmarshal(w.Body.Bytes(), &step); err != nil {
		t.Fatal(err)
	}

	w = do(t, router, http.MethodPost, "/steps/"+step.ID+"/actions", `{"type":"sleep","seconds":0.25}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create sleep: status = %d, body = %s", w.Code, w.Body.String())
	}
	w = do(t, router, http.MethodPost, "/steps/"+step.ID+"/actions", `{"type":"send_signal","host":"127.0.0.1","port":5050,"position":0}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create send: status = %d, body = %s", w.Code, w.Body.String())
	}
	var send actionResponse
	json.Unmarshal(w.Body.Bytes(), &send)
	if send.Text != "send signal 127.0.0.1:5050" {
		t.Errorf("text = %q", send.Text)
	}

	w = do(t, router, http.MethodGet, "/scenario", "")
	var listing output.ScenarioResult
	if err := json.Unmarshal(w.Body.Bytes(), &listing); err != nil {
		t.Fatal(err)
	}
	if listing.Actions != 2 || listing.Entries[1].Kind != "send_signal" || listing.Entries[2].Kind != "sleep" {
		t.Fatalf("unexpected listing %+v", listing)
	}

	w = do(t, router, http.MethodDelete, "/actions/"+send.ID, "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete action: status = %d", w.Code)
	}
	w = do(t, router, http.MethodDelete, "/actions/"+send.ID, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("delete missing action: status = %d", w.Code)
	}

	w = do(t, router, http.MethodDelete, "/steps/"+step.ID, "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete step: status = %d", w.Code)
	}
	sc, _ := ws.Scenario()
	if len(sc.Steps) != 0 {
		t.Fatalf("steps left: %d", len(sc.Steps))
	}
}

func TestCreateActionValidation(t *testing.T) {
	ws, router := testEnv(t, "")
	stepID, _ := seed(t, ws)

	cases := []string{
		`{"type":"click"}`,
		`{"type":"send_signal","port":5050}`,
		`{"type":"wait_for_signal","port":70000}`,
		`{"type":"sleep","seconds":-1}`,
		`not json`,
	}
	for _, body := range cases {
		w := do(t, router, http.MethodPost, "/steps/"+stepID+"/actions", body)
		if w.Code != http.StatusUnprocessableEntity {
			t.Errorf("%s: status = %d, body = %s", body, w.Code, w.Body.String())
		}
	}

	w := do(t, router, http.MethodPost, "/steps/missing/actions", `{"type":"sleep","seconds":1}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing step: status = %d", w.Code)
	}
}

func TestPathShowAndEdit(t *testing.T) {
	ws, router := testEnv(t, "")
	_, clickID := seed(t, ws)

	w := do(t, router, http.MethodGet, "/actions/"+clickID+"/path", "")
	if w.Code != http.StatusOK {
		t.Fatalf("get path: status = %d", w.Code)
	}
	var path output.PathResult
	json.Unmarshal(w.Body.Bytes(), &path)
	if path.Path != "[Desktop][OK]" || len(path.Records) != 2 {
		t.Fatalf("unexpected path %+v", path)
	}

	w = do(t, router, http.MethodPut, "/actions/"+clickID+"/path/1", "title='Cancel'\n-control_type='Button'\n")
	if w.Code != http.StatusOK {
		t.Fatalf("edit: status = %d, body = %s", w.Code, w.Body.String())
	}
	json.Unmarshal(w.Body.Bytes(), &path)
	if path.Records[1].Search != "title='Cancel'" {
		t.Errorf("search = %q", path.Records[1].Search)
	}

	w = do(t, router, http.MethodPut, "/actions/"+clickID+"/path/1", "colour='red'\n")
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("invalid text: status = %d", w.Code)
	}
	w = do(t, router, http.MethodPut, "/actions/"+clickID+"/path/7", "title='x'\n")
	if w.Code != http.StatusNotFound {
		t.Fatalf("bad index: status = %d", w.Code)
	}
}

func TestCompile(t *testing.T) {
	ws, router := testEnv(t, "")
	seed(t, ws)

	w := do(t, router, http.MethodGet, "/compile", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/x-python") {
		t.Errorf("content type = %q", ct)
	}
	if strings.Contains(w.Body.String(), script.TagFunc) {
		t.Error("plain compile should not tag records")
	}

	w = do(t, router, http.MethodGet, "/compile?debug=true", "")
	if !strings.Contains(w.Body.String(), script.TagFunc+"('rec-ok')") {
		t.Errorf("debug compile should tag records:\n%s", w.Body.String())
	}

	w = do(t, router, http.MethodGet, "/compile?step=nope", "")
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("unknown step: status = %d", w.Code)
	}
}

func TestCorrelate(t *testing.T) {
	ws, router := testEnv(t, "")
	seed(t, ws)

	body, _ := json.Marshal(correlateRequest{Stderr: script.FaultMarker + " " + script.FaultNotFound + " rec-ok\n"})
	w := do(t, router, http.MethodPost, "/correlate", string(body))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var loc output.LocationResult
	json.Unmarshal(w.Body.Bytes(), &loc)
	if loc.Step != "Confirm" || loc.Element != "OK" || loc.Depth != 1 {
		t.Errorf("unexpected location %+v", loc)
	}

	body, _ = json.Marshal(correlateRequest{Stderr: script.FaultMarker + " " + script.FaultNotFound + " rec-gone\n"})
	w = do(t, router, http.MethodPost, "/correlate", string(body))
	json.Unmarshal(w.Body.Bytes(), &loc)
	if w.Code != http.StatusOK || loc.Error == "" {
		t.Errorf("miss should report an error, got %d %+v", w.Code, loc)
	}

	w = do(t, router, http.MethodPost, "/correlate", `{}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("empty stderr: status = %d", w.Code)
	}
}

func TestRecorderUnavailable(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodGet, "/recorder", "")
	var st workspace.Status
	json.Unmarshal(w.Body.Bytes(), &st)
	if st.Available {
		t.Error("recorder should be unavailable")
	}
	w = do(t, router, http.MethodPost, "/recorder/start", "")
	if w.Code != http.StatusNotImplemented {
		t.Errorf("start: status = %d", w.Code)
	}
}

func TestRunWithoutRunner(t *testing.T) {
	_, router := testEnv(t, "")
	w := do(t, router, http.MethodPost, "/run", `{}`)
	if w.Code != http.StatusNotImplemented {
		t.Errorf("status = %d", w.Code)
	}
	w = do(t, router, http.MethodGet, "/runs", "")
	if w.Code != http.StatusOK || !bytes.Contains(w.Body.Bytes(), []byte(`"runs":[]`)) {
		t.Errorf("runs: %d %s", w.Code, w.Body.String())
	}
}
