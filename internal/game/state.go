package game

import "errors"

// SandboxStatus represents the lifecycle of a sandbox
type SandboxStatus string

const (
	StatusActive  SandboxStatus = "ACTIVE"
	StatusExpired SandboxStatus = "EXPIRED"
)

// HighlightTag marks the body a previewed shot would hit.
const HighlightTag = "rgba(30,64,175,1)"

var (
	ErrSandboxNotFound = errors.New("sandbox not found")
	ErrSandboxExpired  = errors.New("sandbox expired")
	ErrNoSelection     = errors.New("no body selected")
	ErrBodyNotFound    = errors.New("body not found")
)
