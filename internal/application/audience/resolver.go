package audience

import (
	"context"
	"fmt"

	"github.com/bombers-push/internal/domain"
)

// Resolver expands a declarative audience into the concrete set of user IDs
// it targets. Resolution is a pure function of current directory state: a
// scheduled notification that sends hours later re-resolves, never reuses a
// stale list.
type Resolver interface {
	Resolve(ctx context.Context, spec domain.Audience) (map[string]struct{}, error)
}

type userDirectory interface {
	ListEnabled(ctx context.Context) ([]domain.User, error)
	ListByRole(ctx context.Context, role string) ([]domain.User, error)
	ListByTeam(ctx context.Context, teamID string) ([]domain.User, error)
}

type teamDirectory interface {
	ListByRegion(ctx context.Context, region string) ([]domain.Team, error)
}

type resolver struct {
	users userDirectory
	teams teamDirectory
}

func NewResolver(users userDirectory, teams teamDirectory) Resolver {
	return &resolver{users: users, teams: teams}
}

// Resolve returns the union of each facet's independent matches. All wins
// over everything else and matches every enabled user.
func (r *resolver) Resolve(ctx context.Context, spec domain.Audience) (map[string]struct{}, error) {
	if spec.All {
		users, err := r.users.ListEnabled(ctx)
		if err != nil {
			return nil, err
		}
		return collect(nil, users), nil
	}
	if spec.Empty() {
		// Authoring validation rejects this; the guard keeps a hand-built
		// audience from silently targeting nobody.
		return nil, fmt.Errorf("audience has no facets: %w", domain.ErrBadRequest)
	}

	set := make(map[string]struct{})

	for _, role := range spec.Roles {
		users, err := r.users.ListByRole(ctx, role)
		if err != nil {
			return nil, err
		}
		set = collect(set, users)
	}

	teamIDs := append([]string(nil), spec.TeamIDs...)
	for _, region := range spec.Regions {
		teams, err := r.teams.ListByRegion(ctx, region)
		if err != nil {
			return nil, err
		}
		for _, t := range teams {
			teamIDs = append(teamIDs, t.TeamID)
		}
	}
	for _, teamID := range teamIDs {
		users, err := r.users.ListByTeam(ctx, teamID)
		if err != nil {
			return nil, err
		}
		set = collect(set, users)
	}

	for _, userID := range spec.UserIDs {
		set[userID] = struct{}{}
	}

	return set, nil
}

func collect(set map[string]struct{}, users []domain.User) map[string]struct{} {
	if set == nil {
		set = make(map[string]struct{}, len(users))
	}
	for _, u := range users {
		set[u.UserID] = struct{}{}
	}
	return set
}
