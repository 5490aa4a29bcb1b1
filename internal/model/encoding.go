package model

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// actionDoc is the persisted form of any action variant.
type actionDoc struct {
	Type    ActionKind  `yaml:"type"              json:"type"`
	ID      string      `yaml:"id"                json:"id"`
	Path    *Path       `yaml:"path,omitempty"    json:"path,omitempty"`
	Button  MouseButton `yaml:"button,omitempty"  json:"button,omitempty"`
	Double  bool        `yaml:"double,omitempty"  json:"double,omitempty"`
	Keys    string      `yaml:"keys,omitempty"    json:"keys,omitempty"`
	Seconds float64     `yaml:"seconds,omitempty" json:"seconds,omitempty"`
	Host    string      `yaml:"host,omitempty"    json:"host,omitempty"`
	Port    int         `yaml:"port,omitempty"    json:"port,omitempty"`
}

type stepDoc struct {
	ID      string      `yaml:"id"      json:"id"`
	Name    string      `yaml:"name"    json:"name"`
	Actions []actionDoc `yaml:"actions" json:"actions"`
}

func docFromAction(a Action) (actionDoc, error) {
	doc := actionDoc{Type: a.Kind(), ID: a.ActionID()}
	switch v := a.(type) {
	case *ClickAction:
		p := v.Path
		doc.Path, doc.Button, doc.Double = &p, v.Button, v.Double
	case *KeyboardAction:
		p := v.Path
		doc.Path, doc.Keys = &p, v.Keys
	case *SleepAction:
		doc.Seconds = v.Seconds
	case *SendSignalAction:
		doc.Host, doc.Port = v.Host, v.Port
	case *WaitForSignalAction:
		doc.Port = v.Port
	default:
		return actionDoc{}, fmt.Errorf("unsupported action type %T", a)
	}
	return doc, nil
}

func (doc actionDoc) action() (Action, error) {
	base := ActionBase{ID: doc.ID}
	var path Path
	if doc.Path != nil {
		path = *doc.Path
	}
	switch doc.Type {
	case ActionClick:
		button := doc.Button
		if button == "" {
			button = ButtonLeft
		}
		return &ClickAction{ItemAction: ItemAction{ActionBase: base, Path: path}, Button: button, Double: doc.Double}, nil
	case ActionKeyboard:
		return &KeyboardAction{ItemAction: ItemAction{ActionBase: base, Path: path}, Keys: doc.Keys}, nil
	case ActionSleep:
		return &SleepAction{ActionBase: base, Seconds: doc.Seconds}, nil
	case ActionSendSignal:
		return &SendSignalAction{ActionBase: base, Host: doc.Host, Port: doc.Port}, nil
	case ActionWaitForSignal:
		return &WaitForSignalAction{ActionBase: base, Port: doc.Port}, nil
	default:
		return nil, fmt.Errorf("action %s: unknown type %q", doc.ID, doc.Type)
	}
}

func (s *Step) toDoc() (stepDoc, error) {
	doc := stepDoc{ID: s.ID, Name: s.Name, Actions: make([]actionDoc, 0, len(s.Actions))}
	for _, a := range s.Actions {
		ad, err := docFromAction(a)
		if err != nil {
			return stepDoc{}, fmt.Errorf("step %q: %w", s.Name, err)
		}
		doc.Actions = append(doc.Actions, ad)
	}
	return doc, nil
}

func (s *Step) fromDoc(doc stepDoc) error {
	actions := make([]Action, 0, len(doc.Actions))
	for _, ad := range doc.Actions {
		a, err := ad.action()
		if err != nil {
			return fmt.Errorf("step %q: %w", doc.Name, err)
		}
		actions = append(actions, a)
	}
	s.ID, s.Name, s.Actions = doc.ID, doc.Name, actions
	return nil
}

func (s *Step) MarshalYAML() (interface{}, error) {
	return s.toDoc()
}

func (s *Step) UnmarshalYAML(node *yaml.Node) error {
	var doc stepDoc
	if err := node.Decode(&doc); err != nil {
		return err
	}
	return s.fromDoc(doc)
}

func (s *Step) MarshalJSON() ([]byte, error) {
	doc, err := s.toDoc()
	if err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}

func (s *Step) UnmarshalJSON(data []byte) error {
	var doc stepDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	return s.fromDoc(doc)
}

// MarshalAction encodes a single action with its type discriminator.
func MarshalAction(a Action) ([]byte, error) {
	doc, err := docFromAction(a)
	if err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}

// UnmarshalAction decodes an action written by MarshalAction.
func UnmarshalAction(data []byte) (Action, error) {
	var doc actionDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc.action()
}
