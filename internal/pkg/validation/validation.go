package validation

import "regexp"

// Emitter ids are collaborator-issued codes, e.g. "FLT-2031-SIN-LHR".
// Project ids follow the registry scheme, e.g. "PRJ-BR-0042".
var (
	emitterIDRe = regexp.MustCompile(`^[A-Z0-9][A-Z0-9\-]{2,63}$`)
	projectIDRe = regexp.MustCompile(`^[A-Z0-9][A-Z0-9\-]{2,63}$`)
)

func IsValidEmitterID(id string) bool {
	return emitterIDRe.MatchString(id)
}

func IsValidProjectID(id string) bool {
	return projectIDRe.MatchString(id)
}

// AllValidProjectIDs reports whether every id in the list is well formed.
func AllValidProjectIDs(ids []string) bool {
	for _, id := range ids {
		if !IsValidProjectID(id) {
			return false
		}
	}
	return len(ids) > 0
}
