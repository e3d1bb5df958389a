package engine

import "errors"

// Rejected submissions. None of them changes the session; callers may
// ignore them.
var (
	ErrNotActive       = errors.New("run is not active")
	ErrSceneMismatch   = errors.New("scene is not the active scene")
	ErrNotBattle       = errors.New("scene does not accept this answer")
	ErrAlreadyAnswered = errors.New("scene already answered on this visit")
	ErrUnknownOption   = errors.New("unknown option")
)
