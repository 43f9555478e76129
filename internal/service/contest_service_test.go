package service

import (
	"context"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/codecontest-api/internal/authz"
	"github.com/noah-isme/codecontest-api/internal/dto"
	"github.com/noah-isme/codecontest-api/internal/events"
	"github.com/noah-isme/codecontest-api/internal/repository"
)

func newContestService(t *testing.T, cache *redis.Client, publisher events.Publisher) (ContestService, repository.ContestRepository) {
	t.Helper()
	repo := repository.NewContestRepository(setupServiceDB(t))
	return NewContestService(repo, cache, publisher, newValidator(), zerolog.Nop(), ContestServiceConfig{ActiveCacheTTL: time.Minute}), repo
}

func loops101() dto.ContestCreateRequest {
	return dto.ContestCreateRequest{
		Title:       "Loops 101",
		Description: "Practice iteration",
		Questions: []dto.QuestionRequest{
			{Title: "Sum Array", Description: "Add every number", SampleInput: "1 2 3", SampleOutput: "6"},
			{Title: "Reverse String", Description: "Reverse the input", SampleInput: "abc", SampleOutput: "cba"},
		},
	}
}

func TestContestServiceCreateAndLookupByCode(t *testing.T) {
	publisher := &recordingPublisher{}
	svc, _ := newContestService(t, nil, publisher)
	ctx := context.Background()

	created, err := svc.Create(ctx, teacherActor, loops101())
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.Regexp(t, `^[A-Z0-9]{6}$`, created.ContestCode)

	contest, err := svc.GetByCode(ctx, studentActor, " "+created.ContestCode+" ")
	require.NoError(t, err)
	require.Equal(t, created.ID, contest.ID)
	require.Equal(t, "draft", contest.State)
	require.Len(t, contest.Questions, 2)
	require.Equal(t, "Sum Array", contest.Questions[0].Title)
	require.Equal(t, "Reverse String", contest.Questions[1].Title)

	lower, err := svc.GetByCode(ctx, studentActor, strings.ToLower(created.ContestCode))
	require.NoError(t, err)
	require.Equal(t, created.ID, lower.ID)

	_, err = svc.GetByCode(ctx, studentActor, "ZZZZZZ")
	require.ErrorIs(t, err, ErrContestNotFound)

	require.Equal(t, []string{events.ContestCreated}, publisher.types())
}

func TestContestServiceCreateRules(t *testing.T) {
	svc, _ := newContestService(t, nil, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, studentActor, loops101())
	require.ErrorIs(t, err, ErrForbidden)

	payload := loops101()
	payload.Questions[1].Title = " Sum Array "
	_, err = svc.Create(ctx, teacherActor, payload)
	require.ErrorIs(t, err, ErrDuplicateQuestion)

	payload = loops101()
	payload.Title = "   "
	_, err = svc.Create(ctx, teacherActor, payload)
	require.ErrorIs(t, err, ErrInvalidInput)

	payload = loops101()
	payload.Questions[0].Title = "   "
	_, err = svc.Create(ctx, teacherActor, payload)
	require.ErrorIs(t, err, ErrInvalidInput)

	all, err := svc.ListAll(ctx, teacherActor)
	require.NoError(t, err)
	require.Empty(t, all)
}

func TestContestServiceStoresTextVerbatim(t *testing.T) {
	svc, _ := newContestService(t, nil, nil)
	ctx := context.Background()

	payload := loops101()
	payload.Title = "  Loops & Arrays <101>  "
	payload.Description = "Use a < b && c > d"
	payload.Questions[0].Title = "Sum vector<int>"
	created, err := svc.Create(ctx, teacherActor, payload)
	require.NoError(t, err)

	contest, err := svc.GetByCode(ctx, studentActor, created.ContestCode)
	require.NoError(t, err)
	require.Equal(t, "Loops & Arrays <101>", contest.Title)
	require.Equal(t, "Use a < b && c > d", contest.Description)
	require.Equal(t, "Sum vector<int>", contest.Questions[0].Title)
}

func TestContestServiceRetriesCodeCollisions(t *testing.T) {
	svc, _ := newContestService(t, nil, nil)
	codes := []string{"AAAAAA", "AAAAAA", "BBBBBB"}
	svc.(*contestService).newCode = func() (string, error) {
		code := codes[0]
		codes = codes[1:]
		return code, nil
	}
	ctx := context.Background()

	first, err := svc.Create(ctx, teacherActor, loops101())
	require.NoError(t, err)
	require.Equal(t, "AAAAAA", first.ContestCode)

	second, err := svc.Create(ctx, teacherActor, loops101())
	require.NoError(t, err)
	require.Equal(t, "BBBBBB", second.ContestCode)
}

func TestContestServiceLifecycleAuthorization(t *testing.T) {
	publisher := &recordingPublisher{}
	svc, repo := newContestService(t, nil, publisher)
	ctx := context.Background()

	created, err := svc.Create(ctx, teacherActor, loops101())
	require.NoError(t, err)

	require.ErrorIs(t, svc.Start(ctx, studentActor, created.ID), ErrForbidden)
	require.ErrorIs(t, svc.Start(ctx, otherTeacher, created.ID), ErrContestNotFound)
	require.ErrorIs(t, svc.Start(ctx, teacherActor, "missing"), ErrContestNotFound)
	require.ErrorIs(t, svc.End(ctx, teacherActor, created.ID), ErrInvalidContestState)

	require.NoError(t, svc.Start(ctx, teacherActor, created.ID))
	require.ErrorIs(t, svc.Start(ctx, teacherActor, created.ID), ErrInvalidContestState)

	stored, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, stored.IsActive)

	require.ErrorIs(t, svc.End(ctx, studentActor, created.ID), ErrForbidden)
	require.ErrorIs(t, svc.End(ctx, otherTeacher, created.ID), ErrContestNotFound)
	require.NoError(t, svc.End(ctx, teacherActor, created.ID))

	stored, err = repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.False(t, stored.IsActive)

	require.Equal(t, []string{events.ContestCreated, events.ContestStarted, events.ContestEnded}, publisher.types())
}

func TestContestServiceAddQuestion(t *testing.T) {
	svc, _ := newContestService(t, nil, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, teacherActor, loops101())
	require.NoError(t, err)

	request := dto.AddQuestionRequest{ContestID: created.ID, Title: "FizzBuzz", Description: "Classic"}

	_, err = svc.AddQuestion(ctx, studentActor, request)
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.AddQuestion(ctx, otherTeacher, request)
	require.ErrorIs(t, err, ErrContestNotFound)

	added, err := svc.AddQuestion(ctx, teacherActor, request)
	require.NoError(t, err)
	require.NotEmpty(t, added.QuestionID)

	_, err = svc.AddQuestion(ctx, teacherActor, request)
	require.ErrorIs(t, err, ErrDuplicateQuestion)

	_, err = svc.AddQuestion(ctx, teacherActor, dto.AddQuestionRequest{ContestID: created.ID, Title: " \t "})
	require.ErrorIs(t, err, ErrInvalidInput)

	require.NoError(t, svc.Start(ctx, teacherActor, created.ID))
	live, err := svc.AddQuestion(ctx, teacherActor, dto.AddQuestionRequest{ContestID: created.ID, Title: "Primes"})
	require.NoError(t, err)

	contest, err := svc.GetByCode(ctx, teacherActor, created.ContestCode)
	require.NoError(t, err)
	require.Len(t, contest.Questions, 4)
	require.Equal(t, added.QuestionID, contest.Questions[2].ID)
	require.Equal(t, live.QuestionID, contest.Questions[3].ID)
}

func TestContestServiceListings(t *testing.T) {
	svc, _ := newContestService(t, nil, nil)
	ctx := context.Background()

	draft, err := svc.Create(ctx, teacherActor, loops101())
	require.NoError(t, err)
	live, err := svc.Create(ctx, teacherActor, dto.ContestCreateRequest{Title: "Recursion"})
	require.NoError(t, err)
	foreign, err := svc.Create(ctx, otherTeacher, dto.ContestCreateRequest{Title: "Graphs"})
	require.NoError(t, err)
	require.NoError(t, svc.Start(ctx, teacherActor, live.ID))

	all, err := svc.ListAll(ctx, teacherActor)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{draft.ID, live.ID, foreign.ID}, contestIDs(all))

	visible, err := svc.ListAll(ctx, studentActor)
	require.NoError(t, err)
	require.Equal(t, []string{live.ID}, contestIDs(visible))

	active, err := svc.ListActive(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{live.ID}, contestIDs(active))

	mine, err := svc.ListMine(ctx, teacherActor)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{draft.ID, live.ID}, contestIDs(mine))

	_, err = svc.ListMine(ctx, studentActor)
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.ListAll(ctx, authz.Actor{})
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestContestServiceActiveListingCache(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	svc, _ := newContestService(t, client, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, teacherActor, loops101())
	require.NoError(t, err)

	empty, err := svc.ListActive(ctx)
	require.NoError(t, err)
	require.Empty(t, empty)
	require.True(t, server.Exists(activeListingKeyFor(0)))

	require.NoError(t, svc.Start(ctx, teacherActor, created.ID))
	version, err := server.Get(activeContestsVersionKey)
	require.NoError(t, err)
	require.Equal(t, "1", version)

	active, err := svc.ListActive(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{created.ID}, contestIDs(active))

	cached, err := svc.ListActive(ctx)
	require.NoError(t, err)
	require.Equal(t, contestIDs(active), contestIDs(cached))
	require.Greater(t, server.TTL(activeListingKeyFor(1)), time.Duration(0))
}

func TestContestServiceIgnoresListingCachedBeforeTransition(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	svc, _ := newContestService(t, client, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, teacherActor, loops101())
	require.NoError(t, err)
	require.NoError(t, svc.Start(ctx, teacherActor, created.ID))

	// a reader that loaded the listing before the start finishes its write late
	require.NoError(t, server.Set(activeListingKeyFor(0), "[]"))

	active, err := svc.ListActive(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{created.ID}, contestIDs(active))
}

func contestIDs(contests []dto.ContestResponse) []string {
	ids := make([]string, 0, len(contests))
	for _, contest := range contests {
		ids = append(ids, contest.ID)
	}
	return ids
}
