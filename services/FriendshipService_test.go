package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"chatlink/models"
)

type fakeUsers struct {
	users map[primitive.ObjectID]*models.User
}

func newFakeUsers(users ...models.User) *fakeUsers {
	f := &fakeUsers{users: make(map[primitive.ObjectID]*models.User)}
	for i := range users {
		u := users[i]
		f.users[u.ID] = &u
	}
	return f
}

func (f *fakeUsers) FindByID(_ context.Context, id primitive.ObjectID) (models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return models.User{}, models.ErrNotFound
	}
	return *u, nil
}

func (f *fakeUsers) ListExcluding(_ context.Context, userID primitive.ObjectID, excluded []primitive.ObjectID) ([]models.User, error) {
	skip := map[primitive.ObjectID]bool{userID: true}
	for _, id := range excluded {
		skip[id] = true
	}
	var out []models.User
	for id, u := range f.users {
		if !skip[id] {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUsers) ListByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	var out []models.User
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUsers) AddFriend(_ context.Context, userID, friendID primitive.ObjectID) error {
	u, ok := f.users[userID]
	if !ok {
		return models.ErrNotFound
	}
	for _, id := range u.Friends {
		if id == friendID {
			return nil
		}
	}
	u.Friends = append(u.Friends, friendID)
	return nil
}

func (f *fakeUsers) RemoveFriend(_ context.Context, userID, friendID primitive.ObjectID) error {
	u, ok := f.users[userID]
	if !ok {
		return models.ErrNotFound
	}
	kept := u.Friends[:0]
	for _, id := range u.Friends {
		if id != friendID {
			kept = append(kept, id)
		}
	}
	u.Friends = kept
	return nil
}

type fakeRequests struct {
	requests []models.FriendRequest
}

func (f *fakeRequests) Insert(_ context.Context, request models.FriendRequest) error {
	f.requests = append(f.requests, request)
	return nil
}

func (f *fakeRequests) FindByID(_ context.Context, id primitive.ObjectID) (models.FriendRequest, error) {
	for _, r := range f.requests {
		if r.ID == id {
			return r, nil
		}
	}
	return models.FriendRequest{}, models.ErrNotFound
}

func (f *fakeRequests) CountPending(_ context.Context, from, to primitive.ObjectID) (int64, error) {
	var count int64
	for _, r := range f.requests {
		if r.From == from && r.To == to && r.Status == models.RequestStatusPending {
			count++
		}
	}
	return count, nil
}

func (f *fakeRequests) Delete(_ context.Context, id primitive.ObjectID) error {
	for i, r := range f.requests {
		if r.ID == id {
			f.requests = append(f.requests[:i], f.requests[i+1:]...)
			return nil
		}
	}
	return models.ErrNotFound
}

func (f *fakeRequests) DeletePending(_ context.Context, from, to primitive.ObjectID) error {
	kept := f.requests[:0]
	for _, r := range f.requests {
		if r.From == from && r.To == to && r.Status == models.RequestStatusPending {
			continue
		}
		kept = append(kept, r)
	}
	f.requests = kept
	return nil
}

func (f *fakeRequests) ListReceived(_ context.Context, to primitive.ObjectID) ([]models.FriendRequest, error) {
	var out []models.FriendRequest
	for _, r := range f.requests {
		if r.To == to {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRequests) ListSent(_ context.Context, from primitive.ObjectID) ([]models.FriendRequest, error) {
	var out []models.FriendRequest
	for _, r := range f.requests {
		if r.From == from {
			out = append(out, r)
		}
	}
	return out, nil
}

func newTestService(users ...models.User) (*FriendshipService, *fakeUsers, *fakeRequests) {
	fu := newFakeUsers(users...)
	fr := &fakeRequests{}
	svc := NewFriendshipService(fu, fr)
	svc.Now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	return svc, fu, fr
}

func testUser(name string) models.User {
	return models.User{
		ID:    primitive.NewObjectID(),
		Name:  name,
		Email: name + "@example.com",
	}
}

func assertSymmetry(t *testing.T, fu *fakeUsers) {
	t.Helper()
	for id, u := range fu.users {
		for _, friendID := range u.Friends {
			friend, ok := fu.users[friendID]
			if !ok {
				t.Fatalf("%s has unknown friend %s", u.Name, friendID.Hex())
			}
			reciprocal := false
			for _, back := range friend.Friends {
				if back == id {
					reciprocal = true
				}
			}
			if !reciprocal {
				t.Fatalf("friendship not symmetric: %s -> %s", u.Name, friend.Name)
			}
		}
	}
}

func TestSendRequestReceiverMissing(t *testing.T) {
	alice := testUser("alice")
	svc, _, _ := newTestService(alice)

	_, err := svc.SendRequest(context.Background(), alice.ID, primitive.NewObjectID(), "hello")
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSendRequestToSelf(t *testing.T) {
	alice := testUser("alice")
	svc, _, _ := newTestService(alice)

	_, err := svc.SendRequest(context.Background(), alice.ID, alice.ID, "hi me")
	if !errors.Is(err, models.ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
}

func TestSendRequestDuplicatePending(t *testing.T) {
	alice, bob := testUser("alice"), testUser("bob")
	svc, _, _ := newTestService(alice, bob)

	if _, err := svc.SendRequest(context.Background(), alice.ID, bob.ID, "hello"); err != nil {
		t.Fatalf("first request: %v", err)
	}
	_, err := svc.SendRequest(context.Background(), alice.ID, bob.ID, "hello again")
	if !errors.Is(err, models.ErrConflict) {
		t.Errorf("expected ErrConflict on duplicate pending request, got %v", err)
	}
}

// racingRequests simulates two concurrent sends for the same pair: the
// count check sees nothing, but the unique pending index rejects the
// insert.
type racingRequests struct {
	fakeRequests
}

func (f *racingRequests) CountPending(context.Context, primitive.ObjectID, primitive.ObjectID) (int64, error) {
	return 0, nil
}

func (f *racingRequests) Insert(context.Context, models.FriendRequest) error {
	return models.ErrConflict
}

func TestSendRequestConcurrentDuplicate(t *testing.T) {
	alice, bob := testUser("alice"), testUser("bob")
	svc := NewFriendshipService(newFakeUsers(alice, bob), &racingRequests{})

	_, err := svc.SendRequest(context.Background(), alice.ID, bob.ID, "hello")
	if !errors.Is(err, models.ErrConflict) {
		t.Errorf("expected ErrConflict from the insert path, got %v", err)
	}
}

func TestSendRequestToExistingFriend(t *testing.T) {
	alice, bob := testUser("alice"), testUser("bob")
	alice.Friends = []primitive.ObjectID{bob.ID}
	bob.Friends = []primitive.ObjectID{alice.ID}
	svc, _, _ := newTestService(alice, bob)

	_, err := svc.SendRequest(context.Background(), alice.ID, bob.ID, "again?")
	if !errors.Is(err, models.ErrConflict) {
		t.Errorf("expected ErrConflict for existing friend, got %v", err)
	}
}

func TestAcceptEstablishesSymmetricFriendship(t *testing.T) {
	alice, bob := testUser("alice"), testUser("bob")
	svc, fu, _ := newTestService(alice, bob)
	ctx := context.Background()

	requestID, err := svc.SendRequest(ctx, alice.ID, bob.ID, "hello")
	if err != nil {
		t.Fatalf("send request: %v", err)
	}

	received, err := svc.ListReceived(ctx, bob.ID)
	if err != nil {
		t.Fatalf("list received: %v", err)
	}
	if len(received) != 1 {
		t.Fatalf("expected 1 received request, got %d", len(received))
	}
	if received[0].From.Name != "alice" || received[0].Message != "hello" || received[0].Status != models.RequestStatusPending {
		t.Errorf("unexpected request entry: %+v", received[0])
	}

	if err := svc.RespondToRequest(ctx, bob.ID, requestID, true); err != nil {
		t.Fatalf("accept: %v", err)
	}

	assertSymmetry(t, fu)
	if len(fu.users[alice.ID].Friends) != 1 || fu.users[alice.ID].Friends[0] != bob.ID {
		t.Error("alice should have bob as a friend")
	}
	if len(fu.users[bob.ID].Friends) != 1 || fu.users[bob.ID].Friends[0] != alice.ID {
		t.Error("bob should have alice as a friend")
	}

	received, err = svc.ListReceived(ctx, bob.ID)
	if err != nil {
		t.Fatalf("list received after accept: %v", err)
	}
	if len(received) != 0 {
		t.Errorf("expected no pending requests after accept, got %d", len(received))
	}
}

func TestAcceptClearsCrossedRequest(t *testing.T) {
	alice, bob := testUser("alice"), testUser("bob")
	svc, fu, fr := newTestService(alice, bob)
	ctx := context.Background()

	aliceReq, err := svc.SendRequest(ctx, alice.ID, bob.ID, "hi bob")
	if err != nil {
		t.Fatalf("alice request: %v", err)
	}
	if _, err := svc.SendRequest(ctx, bob.ID, alice.ID, "hi alice"); err != nil {
		t.Fatalf("bob request: %v", err)
	}

	if err := svc.RespondToRequest(ctx, bob.ID, aliceReq, true); err != nil {
		t.Fatalf("accept: %v", err)
	}

	assertSymmetry(t, fu)
	if len(fr.requests) != 0 {
		t.Errorf("expected crossed request to be cleared, %d requests remain", len(fr.requests))
	}
	if len(fu.users[alice.ID].Friends) != 1 || len(fu.users[bob.ID].Friends) != 1 {
		t.Error("expected exactly one friendship after crossed accept")
	}
}

// flakyUsers fails AddFriend for one specific user once, simulating a crash
// between the two friend-set writes of an accept.
type flakyUsers struct {
	*fakeUsers
	failFor primitive.ObjectID
	failed  bool
}

func (f *flakyUsers) AddFriend(ctx context.Context, userID, friendID primitive.ObjectID) error {
	if userID == f.failFor && !f.failed {
		f.failed = true
		return models.ErrTransient
	}
	return f.fakeUsers.AddFriend(ctx, userID, friendID)
}

func TestAcceptRetriesAfterPartialFailure(t *testing.T) {
	alice, bob := testUser("alice"), testUser("bob")
	fu := newFakeUsers(alice, bob)
	flaky := &flakyUsers{fakeUsers: fu, failFor: alice.ID}
	fr := &fakeRequests{}
	svc := NewFriendshipService(flaky, fr)
	ctx := context.Background()

	requestID, err := svc.SendRequest(ctx, alice.ID, bob.ID, "hello")
	if err != nil {
		t.Fatalf("send request: %v", err)
	}

	// first attempt dies between the two friend-set writes
	err = svc.RespondToRequest(ctx, bob.ID, requestID, true)
	if !errors.Is(err, models.ErrTransient) {
		t.Fatalf("expected injected failure, got %v", err)
	}

	// the request must survive the partial failure so the accept can be
	// replayed
	if len(fr.requests) != 1 {
		t.Fatalf("request consumed by failed accept, %d left", len(fr.requests))
	}

	if err := svc.RespondToRequest(ctx, bob.ID, requestID, true); err != nil {
		t.Fatalf("retried accept: %v", err)
	}

	assertSymmetry(t, fu)
	if len(fu.users[alice.ID].Friends) != 1 || len(fu.users[bob.ID].Friends) != 1 {
		t.Error("expected symmetric friendship after retry")
	}
	if len(fr.requests) != 0 {
		t.Errorf("expected request removed after successful retry, %d left", len(fr.requests))
	}
}

func TestRejectRemovesRequestWithoutFriendship(t *testing.T) {
	alice, bob := testUser("alice"), testUser("bob")
	svc, fu, fr := newTestService(alice, bob)
	ctx := context.Background()

	requestID, err := svc.SendRequest(ctx, alice.ID, bob.ID, "please?")
	if err != nil {
		t.Fatalf("send request: %v", err)
	}

	if err := svc.RespondToRequest(ctx, bob.ID, requestID, false); err != nil {
		t.Fatalf("reject: %v", err)
	}

	if len(fr.requests) != 0 {
		t.Error("expected request to be removed on reject")
	}
	if len(fu.users[alice.ID].Friends) != 0 || len(fu.users[bob.ID].Friends) != 0 {
		t.Error("reject must not create a friendship")
	}
}

func TestRespondOnlyByRecipient(t *testing.T) {
	alice, bob, carol := testUser("alice"), testUser("bob"), testUser("carol")
	svc, _, _ := newTestService(alice, bob, carol)
	ctx := context.Background()

	requestID, err := svc.SendRequest(ctx, alice.ID, bob.ID, "hello")
	if err != nil {
		t.Fatalf("send request: %v", err)
	}

	err = svc.RespondToRequest(ctx, carol.ID, requestID, true)
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound when a third party responds, got %v", err)
	}
}

func TestAcceptWithMissingSender(t *testing.T) {
	alice, bob := testUser("alice"), testUser("bob")
	svc, fu, _ := newTestService(alice, bob)
	ctx := context.Background()

	requestID, err := svc.SendRequest(ctx, alice.ID, bob.ID, "hello")
	if err != nil {
		t.Fatalf("send request: %v", err)
	}

	delete(fu.users, alice.ID)

	err = svc.RespondToRequest(ctx, bob.ID, requestID, true)
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound for vanished sender, got %v", err)
	}
}

func TestCancelPendingRequest(t *testing.T) {
	alice, bob := testUser("alice"), testUser("bob")
	svc, _, _ := newTestService(alice, bob)
	ctx := context.Background()

	requestID, err := svc.SendRequest(ctx, alice.ID, bob.ID, "hello")
	if err != nil {
		t.Fatalf("send request: %v", err)
	}

	if err := svc.CancelRequest(ctx, alice.ID, requestID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	received, err := svc.ListReceived(ctx, bob.ID)
	if err != nil {
		t.Fatalf("list received: %v", err)
	}
	if len(received) != 0 {
		t.Error("expected no requests after cancel")
	}

	err = svc.CancelRequest(ctx, alice.ID, requestID)
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second cancel, got %v", err)
	}
}

func TestCancelByNonSender(t *testing.T) {
	alice, bob := testUser("alice"), testUser("bob")
	svc, _, _ := newTestService(alice, bob)
	ctx := context.Background()

	requestID, err := svc.SendRequest(ctx, alice.ID, bob.ID, "hello")
	if err != nil {
		t.Fatalf("send request: %v", err)
	}

	err = svc.CancelRequest(ctx, bob.ID, requestID)
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound when non-sender cancels, got %v", err)
	}
}

func TestCancelNonPendingRequest(t *testing.T) {
	alice, bob := testUser("alice"), testUser("bob")
	svc, _, fr := newTestService(alice, bob)
	ctx := context.Background()

	request := models.FriendRequest{
		ID:     primitive.NewObjectID(),
		From:   alice.ID,
		To:     bob.ID,
		Status: models.RequestStatusRejected,
	}
	fr.requests = append(fr.requests, request)

	err := svc.CancelRequest(ctx, alice.ID, request.ID)
	if !errors.Is(err, models.ErrInvalidState) {
		t.Errorf("expected ErrInvalidState for non-pending request, got %v", err)
	}
}

func TestRemoveFriendSymmetricAndIdempotent(t *testing.T) {
	alice, bob := testUser("alice"), testUser("bob")
	alice.Friends = []primitive.ObjectID{bob.ID}
	bob.Friends = []primitive.ObjectID{alice.ID}
	svc, fu, _ := newTestService(alice, bob)
	ctx := context.Background()

	if err := svc.RemoveFriend(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("remove friend: %v", err)
	}
	if len(fu.users[alice.ID].Friends) != 0 || len(fu.users[bob.ID].Friends) != 0 {
		t.Error("expected friendship removed on both sides")
	}
	assertSymmetry(t, fu)

	// removing again is not an error
	if err := svc.RemoveFriend(ctx, alice.ID, bob.ID); err != nil {
		t.Errorf("second remove should succeed, got %v", err)
	}
}

func TestRemoveFriendMissingUser(t *testing.T) {
	alice := testUser("alice")
	svc, _, _ := newTestService(alice)

	err := svc.RemoveFriend(context.Background(), alice.ID, primitive.NewObjectID())
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing friend document, got %v", err)
	}
}

func TestListOthersExcludesSelfAndFriends(t *testing.T) {
	alice, bob, carol := testUser("alice"), testUser("bob"), testUser("carol")
	alice.Friends = []primitive.ObjectID{bob.ID}
	bob.Friends = []primitive.ObjectID{alice.ID}
	svc, _, _ := newTestService(alice, bob, carol)

	others, err := svc.ListOthers(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("list others: %v", err)
	}
	if len(others) != 1 || others[0].Name != "carol" {
		t.Errorf("expected only carol, got %+v", others)
	}
}

func TestListSentResolvesRecipientProfile(t *testing.T) {
	alice, bob := testUser("alice"), testUser("bob")
	svc, _, _ := newTestService(alice, bob)
	ctx := context.Background()

	if _, err := svc.SendRequest(ctx, alice.ID, bob.ID, "hello"); err != nil {
		t.Fatalf("send request: %v", err)
	}

	sent, err := svc.ListSent(ctx, alice.ID)
	if err != nil {
		t.Fatalf("list sent: %v", err)
	}
	if len(sent) != 1 {
		t.Fatalf("expected 1 sent request, got %d", len(sent))
	}
	if sent[0].User.Name != "bob" || sent[0].Request.Message != "hello" {
		t.Errorf("unexpected sent entry: %+v", sent[0])
	}
}

func TestListFriendsReturnsProfiles(t *testing.T) {
	alice, bob := testUser("alice"), testUser("bob")
	alice.Friends = []primitive.ObjectID{bob.ID}
	bob.Friends = []primitive.ObjectID{alice.ID}
	svc, _, _ := newTestService(alice, bob)

	friends, err := svc.ListFriends(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("list friends: %v", err)
	}
	if len(friends) != 1 || friends[0].Name != "bob" {
		t.Errorf("expected bob, got %+v", friends)
	}
}
