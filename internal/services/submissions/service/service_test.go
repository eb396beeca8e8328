package service

import (
	"context"
	"testing"

	"gavel/internal/modkit/repokit"
	perr "gavel/internal/platform/errors"
	authdom "gavel/internal/services/auth/domain"
	"gavel/internal/services/submissions/domain"
	"gavel/internal/services/submissions/repo"
)

type memStore struct {
	byChallenge map[string][]domain.Submission
}

func (m *memStore) Get(_ context.Context, id string) (*domain.Submission, error) {
	for _, subs := range m.byChallenge {
		for _, s := range subs {
			if s.ID == id {
				cp := s
				return &cp, nil
			}
		}
	}
	return nil, perr.NotFoundf("submission %s not found", id)
}

func (m *memStore) ListByChallenge(_ context.Context, challengeID string) ([]domain.Submission, error) {
	return append([]domain.Submission(nil), m.byChallenge[challengeID]...), nil
}

var _ repo.Storage = (*memStore)(nil)

func fixture() *Service {
	st := &memStore{byChallenge: map[string][]domain.Submission{
		"ch-1": {
			{ID: "s1", ChallengeID: "ch-1", MemberID: "member-a"},
			{ID: "s2", ChallengeID: "ch-1", MemberID: "member-b"},
			{ID: "s3", ChallengeID: "ch-1", MemberID: "member-a"},
		},
	}}
	binder := repokit.BindFunc[repo.Storage](func(repokit.Queryer) repo.Storage { return st })
	return New(nil, binder)
}

func TestList_RequiresChallenge(t *testing.T) {
	s := fixture()
	_, err := s.List(context.Background(), &authdom.Principal{UserID: "member-a"}, "  ")
	if !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("want validation, got %v", err)
	}
}

func TestList_Visibility(t *testing.T) {
	s := fixture()

	cases := []struct {
		name string
		p    *authdom.Principal
		want int
	}{
		{"administrator sees all", &authdom.Principal{UserID: "x", Roles: []string{authdom.RoleAdministrator}}, 3},
		{"copilot sees all", &authdom.Principal{UserID: "x", Roles: []string{authdom.RoleCopilot}}, 3},
		{"reviewer sees all", &authdom.Principal{UserID: "x", Roles: []string{authdom.RoleReviewer}}, 3},
		{"machine sees all", &authdom.Principal{Machine: true, Scopes: []string{"read:submission"}}, 3},
		{"member sees own", &authdom.Principal{UserID: "member-a"}, 2},
		{"member with none", &authdom.Principal{UserID: "member-z"}, 0},
		{"nil principal", nil, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := s.List(context.Background(), tc.p, "ch-1")
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(got) != tc.want {
				t.Fatalf("len = %d want %d", len(got), tc.want)
			}
			if tc.p != nil && len(tc.p.Roles) == 0 && !tc.p.Machine {
				for _, sub := range got {
					if sub.MemberID != tc.p.UserID {
						t.Fatalf("foreign submission %s leaked to %s", sub.ID, tc.p.UserID)
					}
				}
			}
		})
	}
}

func TestGet(t *testing.T) {
	s := fixture()

	sub, err := s.Get(context.Background(), "s2")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if sub.MemberID != "member-b" {
		t.Fatalf("member = %q want member-b", sub.MemberID)
	}

	if _, err := s.Get(context.Background(), ""); !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("blank id: want validation, got %v", err)
	}
	if _, err := s.Get(context.Background(), "ghost"); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("missing: want not found, got %v", err)
	}
}
