package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/ledger"
)

func TestCreateGroup(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, []string{f.alice.ID, f.bob.ID, f.carol.ID}, f.group.Members, "creator first, then invitees")

	g, err := f.ledger.CreateGroup(f.ctx, f.bob.ID, ledger.GroupInput{
		Name:      "Duo",
		MemberIDs: []string{f.bob.ID, f.alice.ID, f.alice.ID, ""},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{f.bob.ID, f.alice.ID}, g.Members)

	_, err = f.ledger.CreateGroup(f.ctx, f.bob.ID, ledger.GroupInput{Name: "  "})
	require.ErrorIs(t, err, ledger.ErrInvalidArgument)

	_, err = f.ledger.CreateGroup(f.ctx, f.bob.ID, ledger.GroupInput{Name: "Ghosts", MemberIDs: []string{"nobody"}})
	require.ErrorIs(t, err, ledger.ErrInvalidArgument)

	groups, err := f.ledger.ListGroups(f.ctx, f.alice.ID)
	require.NoError(t, err)
	assert.Len(t, groups, 2)

	groups, err = f.ledger.ListGroups(f.ctx, f.dave.ID)
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestAddMember(t *testing.T) {
	f := newFixture(t)

	_, err := f.ledger.AddMember(f.ctx, f.dave.ID, f.group.ID, f.dave.Email)
	require.ErrorIs(t, err, ledger.ErrPermissionDenied, "outsiders cannot add themselves")

	g, err := f.ledger.AddMember(f.ctx, f.carol.ID, f.group.ID, "DAVE@example.com")
	require.NoError(t, err)
	assert.Equal(t, []string{f.alice.ID, f.bob.ID, f.carol.ID, f.dave.ID}, g.Members)

	g, err = f.ledger.AddMember(f.ctx, f.carol.ID, f.group.ID, f.dave.Email)
	require.NoError(t, err, "adding an existing member is a no-op")
	assert.Len(t, g.Members, 4)

	_, err = f.ledger.AddMember(f.ctx, f.carol.ID, f.group.ID, "nobody@example.com")
	require.ErrorIs(t, err, ledger.ErrNotFound)

	_, err = f.ledger.AddMember(f.ctx, f.carol.ID, f.group.ID, " ")
	require.ErrorIs(t, err, ledger.ErrInvalidArgument)

	got, err := f.ledger.GetGroup(f.ctx, f.dave.ID, f.group.ID)
	require.NoError(t, err)
	assert.True(t, got.HasMember(f.dave.ID))
}

func TestCreateGroup_ByEmail(t *testing.T) {
	f := newFixture(t)

	g, err := f.ledger.CreateGroup(f.ctx, f.dave.ID, ledger.GroupInput{
		Name:         "Climbing",
		MemberEmails: []string{"Carol@Example.com", " "},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{f.dave.ID, f.carol.ID}, g.Members)

	_, err = f.ledger.CreateGroup(f.ctx, f.dave.ID, ledger.GroupInput{
		Name:         "Climbing",
		MemberEmails: []string{"stranger@example.com"},
	})
	require.ErrorIs(t, err, ledger.ErrInvalidArgument)
}

func TestCreateGroup_IsAtomic(t *testing.T) {
	f := newFixture(t)
	broken := ledger.New(failing(f.store, "AddGroupMembers"), ledger.WithPublisher(f.events))

	_, err := broken.CreateGroup(f.ctx, f.dave.ID, ledger.GroupInput{Name: "Half made", MemberIDs: []string{f.bob.ID}})
	require.ErrorIs(t, err, errInjected)

	groups, err := f.ledger.ListGroups(f.ctx, f.dave.ID)
	require.NoError(t, err)
	assert.Empty(t, groups, "group row must roll back with its members")

	g, err := broken.CreateGroup(f.ctx, f.dave.ID, ledger.GroupInput{Name: "Solo"})
	require.NoError(t, err, "a group without invitees never adds members")
	assert.Equal(t, []string{f.dave.ID}, g.Members)
}
