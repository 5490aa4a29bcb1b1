package model

import (
	"strings"

	"github.com/google/uuid"
)

// Path is the root-to-target chain of element snapshots, root inclusive.
type Path struct {
	Records []PathRecord `yaml:"records" json:"records"`
}

// NewPath builds a path from root-to-target records.
func NewPath(records ...PathRecord) Path {
	return Path{Records: records}
}

// Clone returns a copy of p that shares no storage with it.
func (p Path) Clone() Path {
	if p.Records == nil {
		return Path{}
	}
	records := make([]PathRecord, len(p.Records))
	copy(records, p.Records)
	return Path{Records: records}
}

// Renew returns a copy of p whose records carry fresh ids.
func (p Path) Renew() Path {
	out := p.Clone()
	for i := range out.Records {
		out.Records[i].ID = uuid.NewString()
	}
	return out
}

// IsEmpty reports whether the path has not been resolved.
func (p Path) IsEmpty() bool { return len(p.Records) == 0 }

// Len returns the number of records including the root.
func (p Path) Len() int { return len(p.Records) }

// Descent returns the records below the root, in order.
func (p Path) Descent() []PathRecord {
	if len(p.Records) < 2 {
		return nil
	}
	return p.Records[1:]
}

// Target returns the last record.
func (p Path) Target() (PathRecord, bool) {
	if len(p.Records) == 0 {
		return PathRecord{}, false
	}
	return p.Records[len(p.Records)-1], true
}

// Find returns the index of the record with the given id.
func (p Path) Find(id string) (int, bool) {
	for i := range p.Records {
		if p.Records[i].ID == id {
			return i, true
		}
	}
	return -1, false
}

// String renders the breadcrumb, e.g. "[Desktop][Notepad][Edit]".
func (p Path) String() string {
	var b strings.Builder
	for _, r := range p.Records {
		b.WriteByte('[')
		b.WriteString(r.FriendlyName())
		b.WriteByte(']')
	}
	return b.String()
}
