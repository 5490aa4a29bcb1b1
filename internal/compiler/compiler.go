// Package compiler turns a scenario into a runnable pywinauto script and maps
// faults raised by instrumented scripts back to the recorded path element.
package compiler

import (
	"fmt"
	"strings"

	"github.com/mj1618/uiarec/internal/model"
	"github.com/mj1618/uiarec/internal/script"
)

// Options controls a single compile.
type Options struct {
	Mode script.Mode
	// StepIDs restricts the entry point to the listed steps, in scenario
	// order. Empty means every step.
	StepIDs []string
}

// Compile renders sc as script text. The same scenario and options always
// produce byte-identical output.
func Compile(sc *model.Scenario, opts Options) (string, error) {
	steps, err := selectSteps(sc, opts.StepIDs)
	if err != nil {
		return "", err
	}
	if err := checkStepFuncs(steps); err != nil {
		return "", err
	}

	decls := script.NewDeclarations()
	for _, st := range steps {
		for _, a := range st.Actions {
			a.Declare(decls, opts.Mode)
		}
	}

	var w script.Writer
	section := false
	writeSection := func(lines []string, gap int) {
		if len(lines) == 0 {
			return
		}
		if section {
			w.Blank(2)
		}
		for i, l := range lines {
			if i > 0 {
				w.Blank(gap)
			}
			w.Block(l)
		}
		section = true
	}
	writeSection(decls.Imports(), 0)
	writeSection(decls.Vars(), 0)
	writeSection(decls.Funcs(), 2)

	for _, st := range steps {
		if section {
			w.Blank(2)
		}
		writeStep(&w, st, opts.Mode)
		section = true
	}
	if section {
		w.Blank(2)
	}
	writeMain(&w, steps, decls.Handlers())
	w.Blank(2)
	w.Line("if __name__ == '__main__':")
	w.Indent()
	w.Line("main()")
	w.Dedent()
	return w.String(), nil
}

func selectSteps(sc *model.Scenario, ids []string) ([]*model.Step, error) {
	if len(ids) == 0 {
		return sc.Steps, nil
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, ok := sc.StepByID(id); !ok {
			return nil, fmt.Errorf("compile: unknown step id %q", id)
		}
		want[id] = true
	}
	var out []*model.Step
	for _, st := range sc.Steps {
		if want[st.ID] {
			out = append(out, st)
		}
	}
	return out, nil
}

// checkStepFuncs rejects steps whose ids map to the same function name,
// which would make the later definition replace the earlier one.
func checkStepFuncs(steps []*model.Step) error {
	seen := make(map[string]string, len(steps))
	for _, st := range steps {
		name := StepFunc(st)
		if prev, ok := seen[name]; ok {
			return fmt.Errorf("compile: step ids %q and %q both compile to %s", prev, st.ID, name)
		}
		seen[name] = st.ID
	}
	return nil
}

// StepFunc returns the script function name generated for a step.
func StepFunc(st *model.Step) string {
	var b strings.Builder
	b.WriteString("step_")
	for _, r := range st.ID {
		switch {
		case r == '-':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

func writeStep(w *script.Writer, st *model.Step, mode script.Mode) {
	w.Linef("def %s():", StepFunc(st))
	w.Indent()
	w.Line(docstring(st.Name))
	for _, a := range st.Actions {
		w.Comment(a.Describe())
		a.Emit(w, mode)
	}
	w.Dedent()
}

func writeMain(w *script.Writer, steps []*model.Step, handlers []script.Handler) {
	w.Line("def main():")
	w.Indent()
	if len(handlers) > 0 {
		w.Line("try:")
		w.Indent()
	}
	for _, st := range steps {
		w.Linef("%s()", StepFunc(st))
	}
	if len(steps) == 0 {
		w.Line("pass")
	}
	if len(handlers) > 0 {
		w.Dedent()
		for _, h := range handlers {
			w.Linef("except %s:", h.Clause)
			w.Indent()
			w.Block(h.Body)
			w.Dedent()
		}
	}
	w.Dedent()
}

func docstring(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", " ", "\r", " ")
	return `"""` + r.Replace(s) + `"""`
}
