package codec

import "coachline/internal/domain"

func ParseOrganization(raw []byte) (domain.Organization, error) {
	return parse[domain.Organization](organizationShape, raw)
}

func ParseOrganizations(raw []byte) ([]domain.Organization, error) {
	return parseList[domain.Organization](organizationShape, raw)
}

func StringifyOrganization(v domain.Organization) (string, error) { return stringify(v) }

func ParseCoachingRelationship(raw []byte) (domain.CoachingRelationshipWithUserNames, error) {
	return parse[domain.CoachingRelationshipWithUserNames](relationshipShape, raw)
}

func ParseCoachingRelationships(raw []byte) ([]domain.CoachingRelationshipWithUserNames, error) {
	return parseList[domain.CoachingRelationshipWithUserNames](relationshipShape, raw)
}

func StringifyCoachingRelationship(v domain.CoachingRelationshipWithUserNames) (string, error) {
	return stringify(v)
}

func ParseCoachingSession(raw []byte) (domain.CoachingSession, error) {
	return parse[domain.CoachingSession](sessionShape, raw)
}

// ParseCoachingSessions decodes a session list ordered by date.
func ParseCoachingSessions(raw []byte) ([]domain.CoachingSession, error) {
	sessions, err := parseList[domain.CoachingSession](sessionShape, raw)
	if err != nil {
		return nil, err
	}
	domain.SortSessionsByDate(sessions)
	return sessions, nil
}

func StringifyCoachingSession(v domain.CoachingSession) (string, error) { return stringify(v) }

func ParseNote(raw []byte) (domain.Note, error) { return parse[domain.Note](noteShape, raw) }

func ParseNotes(raw []byte) ([]domain.Note, error) { return parseList[domain.Note](noteShape, raw) }

func StringifyNote(v domain.Note) (string, error) { return stringify(v) }

func ParseAgreement(raw []byte) (domain.Agreement, error) {
	return parse[domain.Agreement](agreementShape, raw)
}

func ParseAgreements(raw []byte) ([]domain.Agreement, error) {
	return parseList[domain.Agreement](agreementShape, raw)
}

func StringifyAgreement(v domain.Agreement) (string, error) { return stringify(v) }

func ParseAction(raw []byte) (domain.Action, error) { return parse[domain.Action](actionShape, raw) }

func ParseActions(raw []byte) ([]domain.Action, error) {
	return parseList[domain.Action](actionShape, raw)
}

func StringifyAction(v domain.Action) (string, error) { return stringify(v) }

func ParseOverarchingGoal(raw []byte) (domain.OverarchingGoal, error) {
	return parse[domain.OverarchingGoal](goalShape, raw)
}

func ParseOverarchingGoals(raw []byte) ([]domain.OverarchingGoal, error) {
	return parseList[domain.OverarchingGoal](goalShape, raw)
}

func StringifyOverarchingGoal(v domain.OverarchingGoal) (string, error) { return stringify(v) }

func ParseUserSession(raw []byte) (domain.UserSession, error) {
	return parse[domain.UserSession](userSessionShape, raw)
}

func StringifyUserSession(v domain.UserSession) (string, error) { return stringify(v) }
