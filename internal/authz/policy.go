// Package authz holds the single authorization policy consulted by every service.
package authz

import "github.com/noah-isme/codecontest-api/internal/models"

// Actor is the identity resolved from a bearer token.
type Actor struct {
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
}

// IsTeacher reports whether the actor holds the teacher role.
func (a Actor) IsTeacher() bool {
	return a.Role == models.RoleTeacher
}

// Authenticated reports whether the actor carries an identity at all.
func (a Actor) Authenticated() bool {
	return a.Email != "" && a.Role.Valid()
}

// Action names something an actor wants to do.
type Action string

// Actions understood by Can.
const (
	ActionCreateContest  Action = "contest:create"
	ActionStartContest   Action = "contest:start"
	ActionEndContest     Action = "contest:end"
	ActionAddQuestion    Action = "contest:add_question"
	ActionListAll        Action = "contest:list_all"
	ActionListMine       Action = "contest:list_mine"
	ActionViewInactive   Action = "contest:view_inactive"
	ActionSubmit         Action = "submission:create"
	ActionViewAllSubmits Action = "submission:view_all"
	ActionCheckCode      Action = "plagiarism:check"
)

// Can decides whether actor may perform action on contest. Actions that do not
// target a specific contest accept a nil contest; owner-scoped actions deny it.
func Can(actor Actor, action Action, contest *models.Contest) bool {
	if !actor.Authenticated() {
		return false
	}

	switch action {
	case ActionCreateContest, ActionListMine, ActionViewInactive:
		return actor.IsTeacher()
	case ActionStartContest, ActionEndContest, ActionAddQuestion, ActionViewAllSubmits:
		return actor.IsTeacher() && contest != nil && contest.OwnedBy(actor.Email)
	case ActionListAll, ActionSubmit, ActionCheckCode:
		return true
	default:
		return false
	}
}

// RoleAllows reports whether the role alone could ever be granted action. Services
// use it to answer Forbidden before touching the store.
func RoleAllows(actor Actor, action Action) bool {
	if !actor.Authenticated() {
		return false
	}

	switch action {
	case ActionCreateContest, ActionStartContest, ActionEndContest, ActionAddQuestion,
		ActionListMine, ActionViewInactive:
		return actor.IsTeacher()
	case ActionListAll, ActionSubmit, ActionViewAllSubmits, ActionCheckCode:
		return true
	default:
		return false
	}
}
