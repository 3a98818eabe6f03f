package usecase

import (
	"errors"
	"fmt"
)

// Stage names a step of the pipeline.
type Stage string

const (
	StageDiscover Stage = "discover"
	StageOpen     Stage = "open"
	StageBounds   Stage = "bounds"
	StageMetadata Stage = "metadata"
	StageField    Stage = "field"
	StageFrame    Stage = "frame"
	StageRender   Stage = "render"
	StageWrite    Stage = "write"
	StageRecord   Stage = "record"
)

// ErrMissingMetadata is returned when an input lacks the bulletin_date attribute.
var ErrMissingMetadata = errors.New("missing bulletin metadata")

// StageError reports the pipeline stage and input that failed.
type StageError struct {
	Stage Stage
	Input string
	Err   error
}

func (e *StageError) Error() string {
	if e.Input == "" {
		return fmt.Sprintf("%s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Stage, e.Input, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageErr(stage Stage, input string, err error) error {
	return &StageError{Stage: stage, Input: input, Err: err}
}
