package authz

import (
	"errors"
	"testing"

	"teamhub/apperr"
	"teamhub/models"
)

func team(members ...models.TeamMember) *models.Team {
	t := &models.Team{Members: members, IsActive: true}
	if o := t.Members.Owner(); o != nil {
		t.OwnerID = o.UserID
		t.CreatedBy = o.UserID
	}
	return t
}

func member(id uint, role string) models.TeamMember {
	return models.TeamMember{UserID: id, Role: role}
}

func TestTeamPermissions(t *testing.T) {
	tm := team(member(1, models.RoleOwner), member(2, models.RoleAdmin), member(3, models.RoleMember))

	cases := []struct {
		name  string
		check func() bool
		allow bool
	}{
		{name: "owner invites", check: func() bool { return CanInvite(tm, 1) }, allow: true},
		{name: "admin invites", check: func() bool { return CanInvite(tm, 2) }, allow: true},
		{name: "member invites", check: func() bool { return CanInvite(tm, 3) }, allow: false},
		{name: "outsider invites", check: func() bool { return CanInvite(tm, 9) }, allow: false},
		{name: "owner changes role", check: func() bool { return CanChangeRole(tm, 1) }, allow: true},
		{name: "admin changes role", check: func() bool { return CanChangeRole(tm, 2) }, allow: false},
		{name: "member changes role", check: func() bool { return CanChangeRole(tm, 3) }, allow: false},
		{name: "admin removes member", check: func() bool { return CanRemoveMember(tm, 2, 3) }, allow: true},
		{name: "owner removes admin", check: func() bool { return CanRemoveMember(tm, 1, 2) }, allow: true},
		{name: "admin removes owner", check: func() bool { return CanRemoveMember(tm, 2, 1) }, allow: false},
		{name: "member removes member", check: func() bool { return CanRemoveMember(tm, 3, 2) }, allow: false},
		{name: "owner transfers", check: func() bool { return CanTransferOwnership(tm, 1) }, allow: true},
		{name: "admin transfers", check: func() bool { return CanTransferOwnership(tm, 2) }, allow: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.check(); got != tc.allow {
				t.Fatalf("got %v, want %v", got, tc.allow)
			}
		})
	}
}

func TestTransferOwnership(t *testing.T) {
	tm := team(member(1, models.RoleOwner), member(2, models.RoleMember))

	if err := TransferOwnership(tm, 1, 2); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if got := tm.Members.RoleOf(1); got != models.RoleAdmin {
		t.Errorf("old owner role = %q, want admin", got)
	}
	if got := tm.Members.RoleOf(2); got != models.RoleOwner {
		t.Errorf("new owner role = %q, want owner", got)
	}
	if tm.OwnerID != 2 {
		t.Errorf("OwnerID = %d, want 2", tm.OwnerID)
	}

	// The previous owner is now an admin; a second transfer by them fails
	// and the member list is untouched.
	if err := TransferOwnership(tm, 1, 2); !errors.Is(err, apperr.ErrNotOwner) {
		t.Fatalf("second transfer: got %v, want ErrNotOwner", err)
	}
	assertSingleOwner(t, tm)

	// The new owner may now change the old owner's role.
	if !CanChangeRole(tm, 2) {
		t.Error("new owner should be able to change roles")
	}
}

func TestTransferOwnershipToNonMember(t *testing.T) {
	tm := team(member(1, models.RoleOwner), member(2, models.RoleMember))

	if err := TransferOwnership(tm, 1, 7); !errors.Is(err, apperr.ErrTargetNotMember) {
		t.Fatalf("got %v, want ErrTargetNotMember", err)
	}
	// A failed transfer must not half-apply.
	if got := tm.Members.RoleOf(1); got != models.RoleOwner {
		t.Errorf("requester role = %q, want owner", got)
	}
	assertSingleOwner(t, tm)
}

// Owner uniqueness holds across any sequence of transfers.
func TestTransferSequenceKeepsSingleOwner(t *testing.T) {
	tm := team(member(1, models.RoleOwner), member(2, models.RoleMember), member(3, models.RoleMember))

	steps := []struct {
		from, to uint
		ok       bool
	}{
		{1, 2, true},
		{1, 3, false}, // 1 is admin now
		{2, 3, true},
		{3, 1, true},
		{2, 1, false},
	}
	for i, s := range steps {
		err := TransferOwnership(tm, s.from, s.to)
		if (err == nil) != s.ok {
			t.Fatalf("step %d (%d->%d): err = %v, want ok=%v", i, s.from, s.to, err, s.ok)
		}
		assertSingleOwner(t, tm)
	}
}

func assertSingleOwner(t *testing.T, tm *models.Team) {
	t.Helper()
	owners := 0
	for _, m := range tm.Members {
		if m.Role == models.RoleOwner {
			owners++
		}
	}
	if owners != 1 {
		t.Fatalf("team has %d owners, want exactly 1", owners)
	}
	if o := tm.Members.Owner(); o == nil || o.UserID != tm.OwnerID {
		t.Fatalf("OwnerID %d does not match member list owner", tm.OwnerID)
	}
}

func TestChannelPermissions(t *testing.T) {
	public := &models.Channel{Type: models.ChannelPublic, CreatedBy: 1}
	private := &models.Channel{
		Type:      models.ChannelPrivate,
		CreatedBy: 1,
		Members: models.ChannelMemberList{
			{UserID: 1, Role: models.ChannelRoleAdmin},
			{UserID: 2, Role: models.ChannelRoleMember},
		},
	}

	cases := []struct {
		name  string
		check func() bool
		allow bool
	}{
		{name: "anyone reads public", check: func() bool { return CanAccessChannel(public, 42) }, allow: true},
		{name: "member reads private", check: func() bool { return CanAccessChannel(private, 2) }, allow: true},
		{name: "creator reads private", check: func() bool { return CanAccessChannel(private, 1) }, allow: true},
		{name: "outsider reads private", check: func() bool { return CanAccessChannel(private, 42) }, allow: false},
		{name: "channel admin moderates", check: func() bool { return CanModerateChannel(private, 1) }, allow: true},
		{name: "channel member moderates", check: func() bool { return CanModerateChannel(private, 2) }, allow: false},
		{name: "outsider moderates public", check: func() bool { return CanModerateChannel(public, 42) }, allow: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.check(); got != tc.allow {
				t.Fatalf("got %v, want %v", got, tc.allow)
			}
		})
	}
}
