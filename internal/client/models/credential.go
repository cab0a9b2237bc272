// Package models defines client-side data models used by the NFCGate console.
package models

// Credential is the opaque session token plus the name shown in the prompt.
// Token and DisplayName are set and cleared together; an empty Token means
// "not authenticated".
type Credential struct {
	Token       string
	DisplayName string
}

// IsEmpty reports whether the credential carries no token.
func (c Credential) IsEmpty() bool {
	return c.Token == ""
}

// AuthPhase is the console's authentication lifecycle state.
type AuthPhase string

const (
	PhaseChecking      AuthPhase = "checking"
	PhaseLogin         AuthPhase = "login"
	PhaseBootstrap     AuthPhase = "bootstrap"
	PhaseAuthenticated AuthPhase = "authenticated"
)
