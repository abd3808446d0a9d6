package model

import "github.com/m-mizutani/goerr/v2"

type Role string

const (
	RolePatient Role = "patient"
	RoleAgent   Role = "agent"
)

// Validate checks if the role is valid
func (r Role) Validate() error {
	switch r {
	case RolePatient, RoleAgent:
		return nil
	default:
		return goerr.New("invalid role", goerr.V("role", r))
	}
}

// MemoryTurn is one utterance held by the rolling conversational memory
type MemoryTurn struct {
	Role     Role   `json:"role"`
	Content  string `json:"content"`
	Sequence int    `json:"sequence"`
}
