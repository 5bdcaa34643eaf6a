// internal/relationship/coordinator.go
//
// Package relationship implements every state transition that spans both the
// users and lobbies collections. Each relationship (membership, invite,
// friendship) is stored twice, once on each participating record, and the
// substrate offers no cross-record atomicity. Every transition here is an
// ordered sequence of single-record calls: a failure at step N leaves steps
// <N committed, nothing is rolled back, and the partial state is reported to
// the caller and to the drift journal instead of being papered over.
package relationship

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/CullanAriyawanse/eelo/internal/database"
	"github.com/CullanAriyawanse/eelo/internal/journal"
	"github.com/CullanAriyawanse/eelo/internal/models"
)

// Coordinator sequences dual-writes across the two stores. The API layer
// never touches a store directly for multi-record operations.
type Coordinator struct {
	users   *database.UserStore
	lobbies *database.LobbyStore
	journal journal.Recorder
	logger  *logrus.Logger
}

// New builds a Coordinator. A nil recorder disables the drift journal and a
// nil logger falls back to the logrus default.
func New(users *database.UserStore, lobbies *database.LobbyStore, rec journal.Recorder, logger *logrus.Logger) *Coordinator {
	if rec == nil {
		rec = journal.Nop{}
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Coordinator{users: users, lobbies: lobbies, journal: rec, logger: logger}
}

// CreateUser creates a user with all relationship lists empty. No lobby-side
// effect, so there is no partial state to worry about.
func (c *Coordinator) CreateUser(ctx context.Context, userID, username string) (*models.User, error) {
	return c.users.CreateUser(ctx, userID, username)
}

// GetUser returns the user's record.
func (c *Coordinator) GetUser(ctx context.Context, userID string) (*models.User, error) {
	return c.users.GetUser(ctx, userID)
}

// CreateLobby creates the lobby with the creator as sole owner, then writes
// the creator's back-reference. The lobby record must exist before the
// back-reference does: a crash between the steps leaves a lobby no user
// points at, which a retry of the second step repairs, rather than a user
// pointing at a lobby that does not exist.
func (c *Coordinator) CreateLobby(ctx context.Context, lobbyName, creatorID string) (string, error) {
	owner := models.NewMembership(creatorID, models.RoleOwner, time.Now().UTC())

	lobbyID, err := c.lobbies.CreateLobby(ctx, lobbyName, owner)
	if err != nil {
		return "", fmt.Errorf("createLobby %q: %w", lobbyName, err)
	}

	if err := c.users.AppendToList(ctx, creatorID, database.ListLobbies, lobbyID); err != nil {
		c.reportDrift(ctx, journal.Drift{
			Op:      "createLobby",
			Step:    "append creator back-reference",
			Kind:    journal.KindLobbyMembership,
			UserID:  creatorID,
			LobbyID: lobbyID,
			Detail:  "lobby created but the creator's lobbies entry was not written",
		})
		return "", fmt.Errorf("createLobby %q: lobby %s created, creator back-reference failed: %w", lobbyName, lobbyID, err)
	}
	return lobbyID, nil
}

// GetLobbyInfo resolves the lobby through the id-prefix scan path and returns
// the flattened member view.
func (c *Coordinator) GetLobbyInfo(ctx context.Context, lobbyID string) ([]models.MemberInfo, error) {
	lobbies, err := c.lobbies.FindLobbiesByIDPrefix(ctx, lobbyID)
	if err != nil {
		return nil, fmt.Errorf("getLobbyInfo %s: %w", lobbyID, err)
	}
	if len(lobbies) == 0 {
		return nil, fmt.Errorf("getLobbyInfo %s: %w", lobbyID, database.ErrNotFound)
	}

	members := lobbies[0].Members
	infos := make([]models.MemberInfo, 0, len(members))
	for _, m := range members {
		infos = append(infos, m.Info())
	}
	return infos, nil
}

// AddUserToLobby joins the user as a player: member entry first, then the
// user's back-reference. Invite consumption is a separate explicit step, and
// nothing here checks for an existing membership; a duplicate join appends a
// duplicate member entry.
func (c *Coordinator) AddUserToLobby(ctx context.Context, userID, lobbyID string) error {
	m := models.NewMembership(userID, models.RolePlayer, time.Now().UTC())

	if err := c.lobbies.AppendMember(ctx, lobbyID, m); err != nil {
		return fmt.Errorf("addUserToLobby %s -> %s: %w", userID, lobbyID, err)
	}

	if err := c.users.AppendToList(ctx, userID, database.ListLobbies, lobbyID); err != nil {
		c.reportDrift(ctx, journal.Drift{
			Op:      "addUserToLobby",
			Step:    "append user back-reference",
			Kind:    journal.KindLobbyMembership,
			UserID:  userID,
			LobbyID: lobbyID,
			Detail:  "member entry written but the user's lobbies entry was not",
		})
		return fmt.Errorf("addUserToLobby %s -> %s: member added, user back-reference failed: %w", userID, lobbyID, err)
	}
	return nil
}

// AcceptLobbyInvite joins the lobby, then consumes the invite. If the join
// lands and the invite removal fails, the user is a full member with a stale
// invite still listed; listing consumers tolerate that, but the operation
// still reports the failure so the caller knows the invite survived.
func (c *Coordinator) AcceptLobbyInvite(ctx context.Context, userID, lobbyID string) error {
	if err := c.AddUserToLobby(ctx, userID, lobbyID); err != nil {
		return fmt.Errorf("acceptLobbyInvite %s -> %s: %w", userID, lobbyID, err)
	}

	if err := c.users.RemoveFromListByValue(ctx, userID, database.ListLobbyInvites, lobbyID); err != nil {
		c.reportDrift(ctx, journal.Drift{
			Op:      "acceptLobbyInvite",
			Step:    "consume invite",
			Kind:    journal.KindLobbyInvite,
			UserID:  userID,
			LobbyID: lobbyID,
			Detail:  "user joined but the pending invite entry was not removed",
		})
		return fmt.Errorf("acceptLobbyInvite %s -> %s: joined, invite removal failed: %w", userID, lobbyID, err)
	}
	return nil
}

// InviteUsersToLobby appends the lobby id to each user's pending invites.
// Per-user failures are independent: every append is attempted, nothing
// already applied is reverted, and the call succeeds only if all did.
// Invites live solely on user records, so there is no second copy to drift.
func (c *Coordinator) InviteUsersToLobby(ctx context.Context, userIDs []string, lobbyID string) error {
	var errs []error
	for _, uid := range userIDs {
		if err := c.users.AppendToList(ctx, uid, database.ListLobbyInvites, lobbyID); err != nil {
			c.logger.WithFields(logrus.Fields{
				"op":      "inviteUsersToLobby",
				"user_id": uid,
				"lobby":   lobbyID,
			}).WithError(err).Warn("invite append failed")
			errs = append(errs, fmt.Errorf("invite %s: %w", uid, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("inviteUsersToLobby %s: %w", lobbyID, err)
	}
	return nil
}

// RemoveLobbyInvite declines (or consumes) a pending lobby invite.
func (c *Coordinator) RemoveLobbyInvite(ctx context.Context, userID, lobbyID string) error {
	if err := c.users.RemoveFromListByValue(ctx, userID, database.ListLobbyInvites, lobbyID); err != nil {
		return fmt.Errorf("removeLobbyInvite %s -> %s: %w", userID, lobbyID, err)
	}
	return nil
}

// UserLeaveLobby removes the user's membership with no role check.
func (c *Coordinator) UserLeaveLobby(ctx context.Context, userID, lobbyID string) error {
	return c.removeUserFromLobby(ctx, "userLeaveLobby", userID, lobbyID)
}

// KickUserFromLobby resolves the admin's role from the current member list
// and, if it permits moderation, performs the same removal as a leave. The
// role check and the removal are separate reads and writes: a demotion racing
// the kick can let a just-demoted admin finish a kick already in flight.
func (c *Coordinator) KickUserFromLobby(ctx context.Context, adminID, userID, lobbyID string) error {
	lobby, err := c.lobbies.GetLobby(ctx, lobbyID)
	if err != nil {
		return fmt.Errorf("kickUserFromLobby %s: %w", lobbyID, err)
	}

	var admin *models.Membership
	for i := range lobby.Members {
		if lobby.Members[i].UserID == adminID {
			admin = &lobby.Members[i]
			break
		}
	}
	if admin == nil || !admin.CanModerate() {
		return fmt.Errorf("kickUserFromLobby: %s cannot kick from lobby %s: %w", adminID, lobbyID, ErrInvalidRole)
	}

	return c.removeUserFromLobby(ctx, "kickUserFromLobby", userID, lobbyID)
}

// removeUserFromLobby is the shared removal primitive: lobby-side member
// entry first, then the user-side back-reference. A missing entry on either
// side means the two copies already disagree, which surfaces as
// ErrInconsistentState rather than a plain not-found. When the lobby side has
// committed and the user side then fails, the overall operation fails even
// though half the effect stands; re-invoking is safe because the committed
// half simply reports its entry as already gone.
func (c *Coordinator) removeUserFromLobby(ctx context.Context, op, userID, lobbyID string) error {
	if err := c.lobbies.RemoveMemberByUserID(ctx, lobbyID, userID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.reportDrift(ctx, journal.Drift{
				Op:      op,
				Step:    "remove lobby member entry",
				Kind:    journal.KindLobbyMembership,
				UserID:  userID,
				LobbyID: lobbyID,
				Detail:  "no member entry found for the user on the lobby side",
			})
			return fmt.Errorf("%s %s -> %s: lobby side has no entry: %w", op, userID, lobbyID, ErrInconsistentState)
		}
		return fmt.Errorf("%s %s -> %s: %w", op, userID, lobbyID, err)
	}

	if err := c.users.RemoveFromListByValue(ctx, userID, database.ListLobbies, lobbyID); err != nil {
		c.reportDrift(ctx, journal.Drift{
			Op:      op,
			Step:    "remove user back-reference",
			Kind:    journal.KindLobbyMembership,
			UserID:  userID,
			LobbyID: lobbyID,
			Detail:  "member entry removed but the user's lobbies entry was not",
		})
		if errors.Is(err, database.ErrNotFound) {
			return fmt.Errorf("%s %s -> %s: user side has no entry: %w", op, userID, lobbyID, ErrInconsistentState)
		}
		return fmt.Errorf("%s %s -> %s: member removed, back-reference removal failed: %w", op, userID, lobbyID, err)
	}
	return nil
}

// SendFriendInvite appends the sender to the receiver's pending invites. The
// relationship is directional until accepted, so the sender's record is
// untouched. Nothing deduplicates repeated invites.
func (c *Coordinator) SendFriendInvite(ctx context.Context, senderID, receiverID string) error {
	if err := c.users.AppendToList(ctx, receiverID, database.ListFriendInvites, senderID); err != nil {
		return fmt.Errorf("sendFriendInvite %s -> %s: %w", senderID, receiverID, err)
	}
	return nil
}

// AcceptFriendInvite writes both friend-list entries, then consumes the
// pending invite. The two appends touch disjoint records and are issued
// concurrently; the invite removal is sequenced strictly after both so that a
// retry after partial failure cannot re-add a friendship while the stale
// invite still exists.
func (c *Coordinator) AcceptFriendInvite(ctx context.Context, senderID, receiverID string) error {
	var wg sync.WaitGroup
	appendErrs := make([]error, 2)

	wg.Add(2)
	go func() {
		defer wg.Done()
		appendErrs[0] = c.users.AppendToList(ctx, senderID, database.ListFriends, receiverID)
	}()
	go func() {
		defer wg.Done()
		appendErrs[1] = c.users.AppendToList(ctx, receiverID, database.ListFriends, senderID)
	}()
	wg.Wait()

	if err := errors.Join(appendErrs[0], appendErrs[1]); err != nil {
		if appendErrs[0] == nil || appendErrs[1] == nil {
			c.reportDrift(ctx, journal.Drift{
				Op:      "acceptFriendInvite",
				Step:    "append friend entries",
				Kind:    journal.KindFriend,
				UserID:  senderID,
				OtherID: receiverID,
				Detail:  "friendship recorded on one side only",
			})
		}
		return fmt.Errorf("acceptFriendInvite %s -> %s: %w", senderID, receiverID, err)
	}

	if err := c.users.RemoveFromListByValue(ctx, receiverID, database.ListFriendInvites, senderID); err != nil {
		c.reportDrift(ctx, journal.Drift{
			Op:      "acceptFriendInvite",
			Step:    "consume invite",
			Kind:    journal.KindFriendInvite,
			UserID:  receiverID,
			OtherID: senderID,
			Detail:  "friendship recorded but the pending invite entry was not removed",
		})
		return fmt.Errorf("acceptFriendInvite %s -> %s: friendship recorded, invite removal failed: %w", senderID, receiverID, err)
	}
	return nil
}

// RemoveFriendInvite declines a pending friend invite on the receiver's
// record, keyed by the sender's id.
func (c *Coordinator) RemoveFriendInvite(ctx context.Context, senderID, receiverID string) error {
	if err := c.users.RemoveFromListByValue(ctx, receiverID, database.ListFriendInvites, senderID); err != nil {
		return fmt.Errorf("removeFriendInvite %s -> %s: %w", senderID, receiverID, err)
	}
	return nil
}

// RemoveFriend removes the friendship from both records, sender's side first.
// A miss on the sender's side means the users were never friends and nothing
// is touched. A miss on the receiver's side after the sender's entry is gone
// is drift; the removal already performed is not undone.
func (c *Coordinator) RemoveFriend(ctx context.Context, senderID, receiverID string) error {
	if err := c.users.RemoveFromListByValue(ctx, senderID, database.ListFriends, receiverID); err != nil {
		return fmt.Errorf("removeFriend %s -> %s: %w", senderID, receiverID, err)
	}

	if err := c.users.RemoveFromListByValue(ctx, receiverID, database.ListFriends, senderID); err != nil {
		c.reportDrift(ctx, journal.Drift{
			Op:      "removeFriend",
			Step:    "remove receiver-side entry",
			Kind:    journal.KindFriend,
			UserID:  senderID,
			OtherID: receiverID,
			Detail:  "sender-side entry removed but the receiver-side entry was not",
		})
		if errors.Is(err, database.ErrNotFound) {
			return fmt.Errorf("removeFriend %s -> %s: receiver side has no entry: %w", senderID, receiverID, ErrInconsistentState)
		}
		return fmt.Errorf("removeFriend %s -> %s: sender side removed, receiver side failed: %w", senderID, receiverID, err)
	}
	return nil
}

// reportDrift logs the partial state and hands it to the journal. Neither
// can fail the transition that detected it.
func (c *Coordinator) reportDrift(ctx context.Context, d journal.Drift) {
	c.logger.WithFields(logrus.Fields{
		"op":       d.Op,
		"step":     d.Step,
		"kind":     d.Kind,
		"user_id":  d.UserID,
		"other_id": d.OtherID,
		"lobby_id": d.LobbyID,
	}).Warn(d.Detail)
	c.journal.Record(ctx, d)
}
