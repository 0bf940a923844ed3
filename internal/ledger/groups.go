package ledger

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// GroupInput describes a new group.
type GroupInput struct {
	Name        string
	Description string
	// MemberIDs and MemberEmails are added alongside the creator, who is
	// always a member.
	MemberIDs    []string
	MemberEmails []string
}

// CreateGroup creates a group with its initial members in one transaction.
func (l *Ledger) CreateGroup(ctx context.Context, actor string, in GroupInput) (*models.Group, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid("group name is required")
	}

	ids := append([]string(nil), in.MemberIDs...)
	for _, email := range in.MemberEmails {
		email = strings.TrimSpace(email)
		if email == "" {
			continue
		}
		user, err := l.store.GetUserByEmail(ctx, email)
		if errors.Is(err, storage.ErrNotFound) {
			return nil, invalid("no user registered with %s", email)
		}
		if err != nil {
			return nil, err
		}
		ids = append(ids, user.ID)
	}

	members := []string{actor}
	seen := map[string]bool{actor: true}
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		members = append(members, id)
	}

	users, err := l.store.GetUsersByIDs(ctx, members)
	if err != nil {
		return nil, err
	}
	for _, id := range members {
		if users[id] == nil {
			return nil, invalid("unknown user %s", id)
		}
	}

	group := &models.Group{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		CreatedBy:   actor,
		Members:     members[:1],
		CreatedAt:   l.now().Unix(),
	}
	err = l.store.WithTx(ctx, func(tx storage.Store) error {
		if err := tx.CreateGroup(ctx, group); err != nil {
			return translate(err)
		}
		if len(members) == 1 {
			return nil
		}
		return translate(tx.AddGroupMembers(ctx, group.ID, members[1:]))
	})
	if err != nil {
		return nil, err
	}
	group.Members = members

	slog.InfoContext(ctx, "Group created", "group_id", group.ID, "members_count", len(members))
	l.metrics.Write("group.create")
	return group, nil
}

// GetGroup returns a group the actor belongs to.
func (l *Ledger) GetGroup(ctx context.Context, actor, groupID string) (*models.Group, error) {
	return l.memberGroup(ctx, l.store, groupID, actor)
}

// ListGroups returns every group the actor belongs to.
func (l *Ledger) ListGroups(ctx context.Context, actor string) ([]*models.Group, error) {
	groups, err := l.store.ListGroupsForUser(ctx, actor)
	return groups, translate(err)
}

// AddMember adds the user registered under email to a group. Any member may
// add people. Adding an existing member is a no-op.
func (l *Ledger) AddMember(ctx context.Context, actor, groupID, email string) (*models.Group, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, invalid("email is required")
	}

	var group *models.Group
	err := l.store.WithTx(ctx, func(tx storage.Store) error {
		if _, err := l.memberGroup(ctx, tx, groupID, actor); err != nil {
			return err
		}
		user, err := tx.GetUserByEmail(ctx, email)
		if err != nil {
			return translate(err)
		}
		if err := tx.AddGroupMembers(ctx, groupID, []string{user.ID}); err != nil {
			return translate(err)
		}
		group, err = tx.GetGroup(ctx, groupID)
		return translate(err)
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Member added", "group_id", groupID, "members_count", len(group.Members))
	l.metrics.Write("group.add_member")
	return group, nil
}

// Users returns display records for ids, keyed by ID.
func (l *Ledger) Users(ctx context.Context, ids []string) (map[string]*models.User, error) {
	return l.store.GetUsersByIDs(ctx, ids)
}
