package orchestrator

import "errors"

var (
	ErrAlreadyRunning  = errors.New("orchestrator: session is already running")
	ErrNotRunnable     = errors.New("orchestrator: session is not in a startable state")
	ErrNotPausable     = errors.New("orchestrator: session is not paused")
	ErrNotCompleted    = errors.New("orchestrator: session has not completed")
	ErrEmptyComments   = errors.New("orchestrator: re-iteration comments must not be empty")
)
