package audience

import (
	"context"
	"errors"
	"testing"

	"github.com/bombers-push/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockUserDirectory struct{ mock.Mock }

func (m *mockUserDirectory) ListEnabled(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.User), args.Error(1)
}
func (m *mockUserDirectory) ListByRole(ctx context.Context, role string) ([]domain.User, error) {
	args := m.Called(ctx, role)
	return args.Get(0).([]domain.User), args.Error(1)
}
func (m *mockUserDirectory) ListByTeam(ctx context.Context, teamID string) ([]domain.User, error) {
	args := m.Called(ctx, teamID)
	return args.Get(0).([]domain.User), args.Error(1)
}

type mockTeamDirectory struct{ mock.Mock }

func (m *mockTeamDirectory) ListByRegion(ctx context.Context, region string) ([]domain.Team, error) {
	args := m.Called(ctx, region)
	return args.Get(0).([]domain.Team), args.Error(1)
}

func users(ids ...string) []domain.User {
	out := make([]domain.User, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.User{UserID: id, Enable: 1})
	}
	return out
}

func ids(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}

// --- tests ---

func TestResolve_All_ReturnsEveryEnabledUser(t *testing.T) {
	ud := &mockUserDirectory{}
	ud.On("ListEnabled", mock.Anything).Return(users("u1", "u2", "u3"), nil)

	r := NewResolver(ud, &mockTeamDirectory{})
	set, err := r.Resolve(context.Background(), domain.Audience{All: true})

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"u1", "u2", "u3"}, ids(set))
	ud.AssertExpectations(t)
}

func TestResolve_All_IgnoresOtherFacets(t *testing.T) {
	ud := &mockUserDirectory{}
	ud.On("ListEnabled", mock.Anything).Return(users("u1"), nil)

	r := NewResolver(ud, &mockTeamDirectory{})
	set, err := r.Resolve(context.Background(), domain.Audience{
		All:   true,
		Roles: []string{domain.RolePlayer},
	})

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"u1"}, ids(set))
	ud.AssertNotCalled(t, "ListByRole", mock.Anything, mock.Anything)
}

func TestResolve_EmptySpec_Rejected(t *testing.T) {
	r := NewResolver(&mockUserDirectory{}, &mockTeamDirectory{})
	_, err := r.Resolve(context.Background(), domain.Audience{})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestResolve_RoleFacet(t *testing.T) {
	ud := &mockUserDirectory{}
	ud.On("ListByRole", mock.Anything, domain.RolePlayer).Return(users("p1", "p2"), nil)

	r := NewResolver(ud, &mockTeamDirectory{})
	set, err := r.Resolve(context.Background(), domain.Audience{Roles: []string{domain.RolePlayer}})

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"p1", "p2"}, ids(set))
}

func TestResolve_RegionExpandsToTeams(t *testing.T) {
	ud := &mockUserDirectory{}
	td := &mockTeamDirectory{}
	td.On("ListByRegion", mock.Anything, "north").Return([]domain.Team{
		{TeamID: "t1"}, {TeamID: "t2"},
	}, nil)
	ud.On("ListByTeam", mock.Anything, "t1").Return(users("u1"), nil)
	ud.On("ListByTeam", mock.Anything, "t2").Return(users("u2"), nil)

	r := NewResolver(ud, td)
	set, err := r.Resolve(context.Background(), domain.Audience{Regions: []string{"north"}})

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"u1", "u2"}, ids(set))
	td.AssertExpectations(t)
}

// The combined resolution must equal the set union of each facet resolved on
// its own, with overlapping users counted once.
func TestResolve_UnionOfFacets(t *testing.T) {
	ud := &mockUserDirectory{}
	td := &mockTeamDirectory{}
	ud.On("ListByRole", mock.Anything, domain.RoleCoach).Return(users("c1", "shared"), nil)
	ud.On("ListByTeam", mock.Anything, "t9").Return(users("shared", "t9a"), nil)

	r := NewResolver(ud, td)
	set, err := r.Resolve(context.Background(), domain.Audience{
		Roles:   []string{domain.RoleCoach},
		TeamIDs: []string{"t9"},
		UserIDs: []string{"explicit", "shared"},
	})

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"c1", "shared", "t9a", "explicit"}, ids(set))
}

func TestResolve_DirectoryError_Propagates(t *testing.T) {
	ud := &mockUserDirectory{}
	ud.On("ListByRole", mock.Anything, domain.RoleParent).Return([]domain.User(nil), errors.New("dynamo down"))

	r := NewResolver(ud, &mockTeamDirectory{})
	_, err := r.Resolve(context.Background(), domain.Audience{Roles: []string{domain.RoleParent}})

	assert.ErrorContains(t, err, "dynamo down")
}
