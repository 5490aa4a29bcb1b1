package model

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Property is one identifying property of a path record. A disabled property
// stays in the snapshot but is not used for matching.
type Property struct {
	Value   Value `yaml:"value"   json:"value"`
	Enabled bool  `yaml:"enabled" json:"enabled"`
}

// PathRecord is the identity snapshot of a single UI element.
type PathRecord struct {
	ID          string   `yaml:"id"           json:"id"`
	Title       Property `yaml:"title"        json:"title"`
	ControlType Property `yaml:"control_type" json:"control_type"`
	AutoID      Property `yaml:"auto_id"      json:"auto_id"`
	ClassName   Property `yaml:"class_name"   json:"class_name"`
	ControlID   Property `yaml:"control_id"   json:"control_id"`
	Handle      Property `yaml:"handle"       json:"handle"`
	Process     Property `yaml:"process"      json:"process"`
	VisibleOnly Property `yaml:"visible_only" json:"visible_only"`
	EnabledOnly Property `yaml:"enabled_only" json:"enabled_only"`
	FoundIndex  Property `yaml:"found_index"  json:"found_index"`
}

type propertyField struct {
	key string
	get func(*PathRecord) *Property
}

// schema fixes the known keys and their text order.
var schema = []propertyField{
	{"title", func(r *PathRecord) *Property { return &r.Title }},
	{"control_type", func(r *PathRecord) *Property { return &r.ControlType }},
	{"auto_id", func(r *PathRecord) *Property { return &r.AutoID }},
	{"class_name", func(r *PathRecord) *Property { return &r.ClassName }},
	{"control_id", func(r *PathRecord) *Property { return &r.ControlID }},
	{"handle", func(r *PathRecord) *Property { return &r.Handle }},
	{"process", func(r *PathRecord) *Property { return &r.Process }},
	{"visible_only", func(r *PathRecord) *Property { return &r.VisibleOnly }},
	{"enabled_only", func(r *PathRecord) *Property { return &r.EnabledOnly }},
	{"found_index", func(r *PathRecord) *Property { return &r.FoundIndex }},
}

// PropertyKeys returns the known property keys in text order.
func PropertyKeys() []string {
	keys := make([]string, len(schema))
	for i, f := range schema {
		keys[i] = f.key
	}
	return keys
}

func lookupField(key string) (propertyField, bool) {
	for _, f := range schema {
		if f.key == key {
			return f, true
		}
	}
	return propertyField{}, false
}

// Snapshot is the identifying data read from a live element.
type Snapshot struct {
	Title       string
	ControlType string
	AutoID      string
	ClassName   string
	ControlID   int
	Handle      int
	Process     int
	Visible     bool
	Enabled     bool
	FoundIndex  *int // set only when siblings are otherwise indistinguishable
}

// skippedContainers are unnamed structural elements that never help matching.
var skippedContainers = map[string]bool{
	"Pane":     true,
	"TitleBar": true,
}

// NewPathRecord snapshots a live element into a record with a fresh id.
func NewPathRecord(s Snapshot) PathRecord {
	r := PathRecord{
		ID:          uuid.NewString(),
		Title:       Property{Value: StringValue(s.Title), Enabled: true},
		ControlType: Property{Value: StringValue(s.ControlType), Enabled: true},
		AutoID:      Property{Value: StringValue(s.AutoID), Enabled: true},
		ClassName:   Property{Value: StringValue(s.ClassName), Enabled: true},
		ControlID:   Property{Value: IntValue(s.ControlID), Enabled: s.ControlID != 0},
		Handle:      Property{Value: IntValue(s.Handle)},
		Process:     Property{Value: IntValue(s.Process)},
		VisibleOnly: Property{Value: BoolValue(s.Visible)},
		EnabledOnly: Property{Value: BoolValue(s.Enabled)},
	}
	if s.FoundIndex != nil {
		r.FoundIndex = Property{Value: IntValue(*s.FoundIndex), Enabled: true}
	}
	if s.Title == "" && skippedContainers[s.ControlType] {
		for _, f := range schema {
			f.get(&r).Enabled = false
		}
	}
	return r
}

// Skipped reports whether no property is usable for matching.
func (r PathRecord) Skipped() bool {
	return r.SearchText() == ""
}

const friendlyNameMax = 20

// FriendlyName is the short label used in breadcrumbs and error messages.
func (r PathRecord) FriendlyName() string {
	if r.Title.Value.Kind() == KindString {
		if t := strings.TrimSpace(r.Title.Value.Str()); t != "" {
			if utf8.RuneCountInString(t) > friendlyNameMax {
				t = string([]rune(t)[:friendlyNameMax])
			}
			return t
		}
	}
	if r.ControlType.Value.Kind() == KindString && r.ControlType.Value.Str() != "" {
		return r.ControlType.Value.Str()
	}
	return ""
}

// SearchText renders enabled, non-empty properties as comma separated
// key=value criteria for the automation framework.
func (r PathRecord) SearchText() string {
	var parts []string
	for _, f := range schema {
		p := f.get(&r)
		if !p.Enabled || p.Value.IsEmpty() {
			continue
		}
		parts = append(parts, f.key+"="+p.Value.Literal())
	}
	return strings.Join(parts, ", ")
}

// EnumerationText renders every property on its own line, disabled ones
// prefixed with "-".
func (r PathRecord) EnumerationText() string {
	var b strings.Builder
	for _, f := range schema {
		p := f.get(&r)
		if !p.Enabled {
			b.WriteByte('-')
		}
		b.WriteString(f.key)
		b.WriteByte('=')
		b.WriteString(p.Value.Literal())
		b.WriteByte('\n')
	}
	return b.String()
}

// ParseEnumeration replaces the property set from enumeration text. On any
// error the record is left unchanged. Keys missing from the text become
// absent and disabled.
func (r *PathRecord) ParseEnumeration(text string) error {
	var next PathRecord
	next.ID = r.ID
	seen := make(map[string]bool, len(schema))

	for i, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		fail := func(reason string) error {
			return &InvalidPathTextError{Record: r.FriendlyName(), Line: line, LineNo: i + 1, Reason: reason}
		}

		enabled := true
		body := line
		if strings.HasPrefix(body, "-") {
			enabled = false
			body = strings.TrimSpace(body[1:])
		}
		key, rawValue, ok := strings.Cut(body, "=")
		if !ok {
			return fail("expected key=value")
		}
		key = strings.TrimSpace(key)
		f, known := lookupField(key)
		if !known {
			return fail(fmt.Sprintf("unknown key %q", key))
		}
		if seen[key] {
			return fail(fmt.Sprintf("duplicate key %q", key))
		}
		seen[key] = true

		v, err := parseLiteral(strings.TrimSpace(rawValue))
		if err != nil {
			return fail(err.Error())
		}
		*f.get(&next) = Property{Value: v, Enabled: enabled}
	}

	*r = next
	return nil
}
