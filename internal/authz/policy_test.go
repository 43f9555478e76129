package authz

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/codecontest-api/internal/models"
)

func TestCanRestrictsContestMutationToOwningTeacher(t *testing.T) {
	owner := Actor{Email: "owner@example.com", Role: models.RoleTeacher}
	other := Actor{Email: "other@example.com", Role: models.RoleTeacher}
	student := Actor{Email: "student@example.com", Role: models.RoleStudent}
	contest := &models.Contest{TeacherEmail: owner.Email}

	for _, action := range []Action{ActionStartContest, ActionEndContest, ActionAddQuestion, ActionViewAllSubmits} {
		require.True(t, Can(owner, action, contest), action)
		require.False(t, Can(other, action, contest), action)
		require.False(t, Can(student, action, contest), action)
		require.False(t, Can(owner, action, nil), action)
	}
}

func TestCanRoleScopedActions(t *testing.T) {
	teacher := Actor{Email: "t@example.com", Role: models.RoleTeacher}
	student := Actor{Email: "s@example.com", Role: models.RoleStudent}

	require.True(t, Can(teacher, ActionCreateContest, nil))
	require.False(t, Can(student, ActionCreateContest, nil))
	require.True(t, Can(teacher, ActionViewInactive, nil))
	require.False(t, Can(student, ActionViewInactive, nil))
	require.True(t, Can(student, ActionSubmit, nil))
	require.True(t, Can(student, ActionCheckCode, nil))
}

func TestCanRejectsAnonymousActors(t *testing.T) {
	require.False(t, Can(Actor{}, ActionListAll, nil))
	require.False(t, Can(Actor{Email: "x@example.com", Role: "admin"}, ActionSubmit, nil))
	require.False(t, RoleAllows(Actor{}, ActionSubmit))
}

func TestRoleAllowsAnswersBeforeLookup(t *testing.T) {
	teacher := Actor{Email: "t@example.com", Role: models.RoleTeacher}
	student := Actor{Email: "s@example.com", Role: models.RoleStudent}

	require.True(t, RoleAllows(teacher, ActionStartContest))
	require.False(t, RoleAllows(student, ActionStartContest))
	require.False(t, RoleAllows(student, ActionAddQuestion))
	require.True(t, RoleAllows(student, ActionViewAllSubmits))
	require.False(t, RoleAllows(teacher, Action("unknown")))
}
