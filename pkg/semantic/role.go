package semantic

import "strings"

// Role is the semantic role a concept plays relative to an event.
type Role int

const (
	RoleOther Role = iota
	RoleAgent
	RolePatient
	RolePossessor
)

const (
	agentSuffix        = " AGENT"
	patientSuffix      = " PATIENT"
	definitenessSuffix = " DEFINITENESS"
	qualifierSuffix    = " QUALIFIER"
	referenceSuffix    = "REFERENCE TO CONCEPT"
	qualifierReference = "QUALIFIER REFERENCE TO CONCEPT"
)

func (r Role) String() string {
	switch r {
	case RoleAgent:
		return "AGENT"
	case RolePatient:
		return "PATIENT"
	case RolePossessor:
		return "POSSESSOR"
	default:
		return "OTHER"
	}
}

// suffix is the key suffix that marks a role slot on an event node.
func (r Role) suffix() string {
	switch r {
	case RoleAgent:
		return agentSuffix
	case RolePatient:
		return patientSuffix
	default:
		return ""
	}
}

// RoleFromPath attributes a semantic role from a node's ancestor tags.
// The nearest ancestor carrying AGENT, PATIENT or POSSESSOR wins.
func RoleFromPath(path []string) Role {
	for i := len(path) - 1; i >= 0; i-- {
		fields := strings.Fields(path[i])
		if len(fields) == 0 {
			continue
		}
		switch fields[len(fields)-1] {
		case "AGENT":
			return RoleAgent
		case "PATIENT":
			return RolePatient
		case "POSSESSOR":
			return RolePossessor
		}
	}
	return RoleOther
}
