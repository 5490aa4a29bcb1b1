package server

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"gopkg.in/yaml.v3"

	"github.com/mj1618/uiarec/internal/compiler"
	"github.com/mj1618/uiarec/internal/model"
	"github.com/mj1618/uiarec/internal/output"
	"github.com/mj1618/uiarec/internal/script"
)

// resultToText serializes a tool result to YAML for the MCP response.
func resultToText(v interface{}) string {
	b, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return string(b)
}

func textResult(v interface{}) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(resultToText(v)), nil
}

func errorResult(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}

func (s *Server) handleListScenario(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sc, err := s.ws.Scenario()
	if err != nil {
		return errorResult(err)
	}
	return textResult(output.NewScenarioResult(s.ws.Path(), sc))
}

func (s *Server) handleAddStep(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := stringParam(request.GetArguments(), "name", "")
	if name == "" {
		return mcp.NewToolResultError("name is required"), nil
	}
	var id string
	err := s.ws.Update(func(sc *model.Scenario) error {
		id = sc.AddStep(name).ID
		return nil
	})
	if err != nil {
		return errorResult(err)
	}
	return textResult(map[string]string{"step_id": id, "name": name})
}

func (s *Server) handleRemoveStep(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := stringParam(request.GetArguments(), "step_id", "")
	err := s.ws.Update(func(sc *model.Scenario) error {
		i, ok := sc.StepIndex(id)
		if !ok {
			return fmt.Errorf("step %s: %w", id, model.ErrNotFound)
		}
		return sc.RemoveStep(i)
	})
	if err != nil {
		return errorResult(err)
	}
	return textResult(map[string]string{"removed": id})
}

func (s *Server) handleAddAction(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	stepID := stringParam(params, "step_id", "")

	var a model.Action
	switch model.ActionKind(stringParam(params, "type", "")) {
	case model.ActionSleep:
		secs := floatParam(params, "seconds", 0)
		if secs < 0 {
			return mcp.NewToolResultError("seconds must not be negative"), nil
		}
		a = model.NewSleepAction(secs)
	case model.ActionSendSignal:
		host := stringParam(params, "host", "")
		port := intParam(params, "port", 0)
		if host == "" || port <= 0 || port > 65535 {
			return mcp.NewToolResultError("send_signal needs host and a port in 1..65535"), nil
		}
		a = model.NewSendSignalAction(host, port)
	case model.ActionWaitForSignal:
		port := intParam(params, "port", 0)
		if port <= 0 || port > 65535 {
			return mcp.NewToolResultError("wait_for_signal needs a port in 1..65535"), nil
		}
		a = model.NewWaitForSignalAction(port)
	default:
		return mcp.NewToolResultError("type must be sleep, send_signal or wait_for_signal"), nil
	}

	position := intParam(params, "position", -1)
	err := s.ws.Update(func(sc *model.Scenario) error {
		st, ok := sc.StepByID(stepID)
		if !ok {
			return fmt.Errorf("step %s: %w", stepID, model.ErrNotFound)
		}
		if position < 0 {
			st.AppendAction(a)
			return nil
		}
		return st.InsertAction(position, a)
	})
	if err != nil {
		return errorResult(err)
	}
	return textResult(map[string]string{"action_id": a.ActionID(), "text": a.Describe()})
}

func (s *Server) handleRemoveAction(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := stringParam(request.GetArguments(), "action_id", "")
	err := s.ws.Update(func(sc *model.Scenario) error {
		e, ok := sc.ActionByID(id)
		if !ok {
			return fmt.Errorf("action %s: %w", id, model.ErrNotFound)
		}
		return e.Step.RemoveAction(e.ActionIndex)
	})
	if err != nil {
		return errorResult(err)
	}
	return textResult(map[string]string{"removed": id})
}

func (s *Server) handleShowPath(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := stringParam(request.GetArguments(), "action_id", "")
	sc, err := s.ws.Scenario()
	if err != nil {
		return errorResult(err)
	}
	e, ok := sc.ActionByID(id)
	if !ok {
		return errorResult(fmt.Errorf("action %s: %w", id, model.ErrNotFound))
	}
	pa, ok := e.Action.(model.PathAction)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("action %s (%s) has no element path", id, e.Action.Kind())), nil
	}
	return textResult(output.NewPathResult(id, pa.Target()))
}

func (s *Server) handleEditPath(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	id := stringParam(params, "action_id", "")
	index := intParam(params, "index", -1)
	text := stringParam(params, "text", "")

	var result output.PathResult
	err := s.ws.Update(func(sc *model.Scenario) error {
		if err := sc.EditRecord(id, index, text); err != nil {
			return err
		}
		e, _ := sc.ActionByID(id)
		result = output.NewPathResult(id, e.Action.(model.PathAction).Target())
		return nil
	})
	if err != nil {
		return errorResult(err)
	}
	return textResult(result)
}

func (s *Server) handleCompile(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	opts := compiler.Options{StepIDs: stringsParam(params, "steps")}
	if debug := boolPtrParam(params, "debug"); debug != nil && *debug {
		opts.Mode = script.ModeDebug
	}
	src, err := s.ws.Compile(opts)
	if err != nil {
		return errorResult(err)
	}
	return mcp.NewToolResultText(src), nil
}

func (s *Server) handleRun(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	out, err := s.ws.Run(ctx, stringsParam(params, "steps"), boolPtrParam(params, "debug"))
	if err != nil {
		return errorResult(err)
	}
	text := resultToText(out.Run)
	if out.Result.OK() {
		return mcp.NewToolResultText(text), nil
	}
	return mcp.NewToolResultError(text), nil
}

func (s *Server) handleCorrelate(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stderr := stringParam(request.GetArguments(), "stderr", "")
	f, loc, err := s.ws.Correlate(stderr)
	res := output.NewLocationResult(f, loc, err)
	if err != nil {
		return mcp.NewToolResultError(resultToText(res)), nil
	}
	return textResult(res)
}

func (s *Server) handleHistory(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	runs, err := s.ws.History(intParam(request.GetArguments(), "limit", 20))
	if err != nil {
		return errorResult(err)
	}
	return textResult(runs)
}

func (s *Server) handleRecord(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	switch cmd := stringParam(params, "command", ""); cmd {
	case "start":
		stepID, err := s.ws.StartRecording(stringParam(params, "step_id", ""))
		if err != nil {
			return errorResult(err)
		}
		return textResult(map[string]string{"recording": stepID})
	case "drain":
		n, err := s.ws.Drain()
		if err != nil {
			return errorResult(err)
		}
		return textResult(map[string]int{"drained": n})
	case "stop":
		n, err := s.ws.StopRecording()
		if err != nil {
			return errorResult(err)
		}
		return textResult(map[string]int{"drained": n})
	case "status":
		return textResult(s.ws.Status())
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown record command %q (use start, drain, stop, status)", cmd)), nil
	}
}
