package service

import "errors"

// Authentication errors.
var (
	ErrUnauthenticated    = errors.New("authentication required")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
)

// ErrForbidden indicates the caller's role may not perform the action.
var ErrForbidden = errors.New("forbidden")

// ErrInvalidInput indicates a request that passed struct validation but is still unusable.
var ErrInvalidInput = errors.New("invalid input")

// Contest errors.
var (
	ErrContestNotFound     = errors.New("contest not found")
	ErrQuestionNotFound    = errors.New("question not found in contest")
	ErrInvalidContestState = errors.New("invalid contest state")
	ErrDuplicateQuestion   = errors.New("question title already exists in contest")
)

// Submission errors.
var (
	ErrDuplicateSubmission = errors.New("submission already exists for this question")
	ErrSubmissionCooldown  = errors.New("submission cooldown in effect")
	ErrUnsupportedCode     = errors.New("code payload must be text")
)

// Analysis errors surfaced by the standalone check.
var (
	ErrAnalysisFailed    = errors.New("plagiarism analysis failed")
	ErrAnalysisMalformed = errors.New("failed to parse plagiarism analysis result")
)
