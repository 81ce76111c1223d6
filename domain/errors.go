package domain

import (
	"errors"
	"fmt"
)

// Pipeline failure taxonomy. ErrBadRequest is user visible, the rest surface
// to clients as a generic internal error.
var (
	ErrBadRequest           = errors.New("bad request")
	ErrTranscodeFailure     = errors.New("audio transcode failed")
	ErrTranscriptionFailure = errors.New("transcription failed")
	ErrSchemaViolation      = errors.New("reply does not match schema")
	ErrSynthesisFailure     = errors.New("speech synthesis failed")
)

// Stage names a step of the reply pipeline
type Stage string

const (
	StageStart       Stage = "start"
	StageAudioDecode Stage = "audio_decode"
	StageGated       Stage = "gated"
	StageGenerating  Stage = "generating"
	StageEnriching   Stage = "enriching"
	StageDone        Stage = "done"
	StageFailed      Stage = "failed"
)

// StageError records the stage a pipeline run failed in
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// IsBadRequest reports whether err was caused by client input
func IsBadRequest(err error) bool {
	return errors.Is(err, ErrBadRequest)
}
