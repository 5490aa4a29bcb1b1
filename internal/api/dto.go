package api

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/mj1618/uiarec/internal/model"
)

type createStepRequest struct {
	Name string `json:"name"`
}

func (r createStepRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
	)
}

type stepResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Index int    `json:"index"`
}

// createActionRequest adds an authored action. Element actions come from
// recording only.
type createActionRequest struct {
	Type     model.ActionKind `json:"type"`
	Seconds  float64          `json:"seconds"`
	Host     string           `json:"host"`
	Port     int              `json:"port"`
	Position *int             `json:"position"`
}

func (r createActionRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Type, validation.Required, validation.In(
			model.ActionSleep, model.ActionSendSignal, model.ActionWaitForSignal)),
		validation.Field(&r.Seconds, validation.When(r.Type == model.ActionSleep, validation.Min(0.0))),
		validation.Field(&r.Host, validation.When(r.Type == model.ActionSendSignal, validation.Required, is.Host)),
		validation.Field(&r.Port, validation.When(r.Type != model.ActionSleep, validation.Required, validation.Min(1), validation.Max(65535))),
	)
}

func (r createActionRequest) action() (model.Action, error) {
	switch r.Type {
	case model.ActionSleep:
		return model.NewSleepAction(r.Seconds), nil
	case model.ActionSendSignal:
		return model.NewSendSignalAction(r.Host, r.Port), nil
	case model.ActionWaitForSignal:
		return model.NewWaitForSignalAction(r.Port), nil
	default:
		return nil, fmt.Errorf("unsupported action type %q", r.Type)
	}
}

type actionResponse struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
	Text string `json:"text"`
}

func newActionResponse(a model.Action) actionResponse {
	return actionResponse{ID: a.ActionID(), Kind: string(a.Kind()), Text: a.Describe()}
}

type runRequest struct {
	Steps []string `json:"steps"`
	Debug *bool    `json:"debug"`
}

type correlateRequest struct {
	Stderr string `json:"stderr"`
}

func (r correlateRequest) Validate() error {
	return validation.ValidateStruct(&r, validation.Field(&r.Stderr, validation.Required))
}

type recordStartRequest struct {
	StepID string `json:"step_id"`
}

type recordResponse struct {
	StepID  string `json:"step_id,omitempty"`
	Drained int    `json:"drained"`
}
