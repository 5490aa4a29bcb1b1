package recorder

import (
	"fmt"

	"github.com/mj1618/uiarec/internal/model"
	"github.com/mj1618/uiarec/internal/platform"
)

// identity is the part of a snapshot the automation framework matches on.
type identity struct {
	title, controlType, autoID, className string
	controlID                             int
}

func identityOf(s model.Snapshot) identity {
	return identity{s.Title, s.ControlType, s.AutoID, s.ClassName, s.ControlID}
}

// BuildPath snapshots el and every ancestor up to the desktop root. Elements
// indistinguishable from a sibling get a found_index.
func BuildPath(el platform.Element) (model.Path, error) {
	var records []model.PathRecord
	for el != nil {
		snap, err := el.Snapshot()
		if err != nil {
			return model.Path{}, fmt.Errorf("snapshot element: %w", err)
		}
		parent, err := el.Parent()
		if err != nil {
			return model.Path{}, fmt.Errorf("read parent of %q: %w", snap.Title, err)
		}
		if parent != nil {
			idx, err := foundIndex(parent, el, snap)
			if err != nil {
				return model.Path{}, err
			}
			snap.FoundIndex = idx
		}
		records = append(records, model.NewPathRecord(snap))
		el = parent
	}
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return model.NewPath(records...), nil
}

// foundIndex returns the position of self among the parent's children that
// share its identity, or nil when it is unique.
func foundIndex(parent, el platform.Element, self model.Snapshot) (*int, error) {
	children, err := parent.Children()
	if err != nil {
		return nil, fmt.Errorf("list siblings of %q: %w", self.Title, err)
	}
	want := identityOf(self)
	cmp, canCompare := el.(platform.ElementComparer)
	pos, matches := -1, 0
	for _, c := range children {
		s, err := c.Snapshot()
		if err != nil {
			continue
		}
		if identityOf(s) != want {
			continue
		}
		same := s == self
		if canCompare {
			same = cmp.SameElement(c)
		}
		if same {
			pos = matches
		}
		matches++
	}
	if matches < 2 || pos < 0 {
		return nil, nil
	}
	return &pos, nil
}
