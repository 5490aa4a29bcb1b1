package script

// Mode selects plain or instrumented code generation.
type Mode int

const (
	ModePlain Mode = iota
	ModeDebug
)

// Debug reports whether fault-correlation instrumentation is emitted.
func (m Mode) Debug() bool { return m == ModeDebug }

func (m Mode) String() string {
	if m == ModeDebug {
		return "debug"
	}
	return "plain"
}

// Handler is one except clause wrapped around the script entry point.
type Handler struct {
	Clause string // text after "except", e.g. "ValueError as exc"
	Body   string // unindented, newline separated
}

// Declarations collects script-level declarations for a single compile.
// Every kind is deduplicated by equality and keeps first-seen order.
type Declarations struct {
	imports  []string
	vars     []string
	funcs    []string
	handlers []Handler
}

// NewDeclarations returns an empty declaration set.
func NewDeclarations() *Declarations {
	return &Declarations{}
}

// Import adds an import statement.
func (d *Declarations) Import(line string) {
	d.imports = appendUnique(d.imports, line)
}

// Var adds a module-level variable assignment.
func (d *Declarations) Var(line string) {
	d.vars = appendUnique(d.vars, line)
}

// Func adds a helper function definition.
func (d *Declarations) Func(block string) {
	d.funcs = appendUnique(d.funcs, block)
}

// Handle adds an exception handler around the entry point.
func (d *Declarations) Handle(h Handler) {
	for _, existing := range d.handlers {
		if existing == h {
			return
		}
	}
	d.handlers = append(d.handlers, h)
}

func (d *Declarations) Imports() []string { return append([]string(nil), d.imports...) }
func (d *Declarations) Vars() []string { return append([]string(nil), d.vars...) }
func (d *Declarations) Funcs() []string { return append([]string(nil), d.funcs...) }
func (d *Declarations) Handlers() []Handler { return append([]Handler(nil), d.handlers...) }

func appendUnique(list []string, s string) []string {
	for _, existing := range list {
		if existing == s {
			return list
		}
	}
	return append(list, s)
}
