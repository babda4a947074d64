package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/5w1tchy/textbooks-api/internal/integrity"
	"github.com/5w1tchy/textbooks-api/internal/store/docstore"
)

func TestUserCreate_RequiredFields(t *testing.T) {
	svc := newServices(t)

	tests := []struct {
		in    CreateUserInput
		field string
	}{
		{CreateUserInput{}, "firebaseId"},
		{CreateUserInput{FirebaseID: "fb", Email: "a@b.c"}, "displayName"},
		{CreateUserInput{FirebaseID: "fb", DisplayName: "n"}, "email"},
		{CreateUserInput{FirebaseID: "fb", DisplayName: "n", Email: "not an email"}, "email"},
	}
	for _, tt := range tests {
		_, err := svc.Users.Create(t.Context(), tt.in)
		var fe *FieldError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, tt.field, fe.Field)
	}
}

func TestUserCreate_DuplicateEmail(t *testing.T) {
	svc := newServices(t)
	ctx := t.Context()
	mustUser(t, svc, "fb-1")

	_, err := svc.Users.Create(ctx, CreateUserInput{FirebaseID: "fb-2", DisplayName: "other", Email: "fb-1@example.com"})
	var dup *docstore.DuplicateKeyError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "email", dup.Field)

	users, err := svc.Users.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestUserList_ByFirebaseID(t *testing.T) {
	svc := newServices(t)
	mustUser(t, svc, "fb-1")
	uid := mustUser(t, svc, "fb-2")

	users, err := svc.Users.List(t.Context(), "fb-2")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, uid, users[0].ID)
}

func TestUserUpdateWishlist(t *testing.T) {
	svc := newServices(t)
	ctx := t.Context()
	b1 := mustBook(t, svc, "111")
	b2 := mustBook(t, svc, "222")
	uid := mustUser(t, svc, "fb-1")

	_, err := svc.Users.UpdateWishlist(ctx, uid, nil)
	var re *RequestError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "Missing bookIds parameter in request body", re.Message)

	u, err := svc.Users.UpdateWishlist(ctx, uid, &[]string{b1, b2, b1})
	require.NoError(t, err)
	assert.Equal(t, []string{b1, b2}, u.Wishlist)

	_, err = svc.Users.UpdateWishlist(ctx, uid, &[]string{b2, docstore.NewID()})
	var mde *integrity.MissingDocumentError
	require.ErrorAs(t, err, &mde)
	assert.Equal(t, "book", mde.Kind)

	u, err = svc.Users.Get(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, []string{b1, b2}, u.Wishlist)
}

func TestUserDelete_CascadesListings(t *testing.T) {
	svc := newServices(t)
	ctx := t.Context()
	bid := mustBook(t, svc, "111")
	uid := mustUser(t, svc, "fb-1")
	mustUser(t, svc, "fb-2")

	var ids []string
	for range 2 {
		l, err := svc.Listings.Create(ctx, CreateListingInput{BookID: bid, Condition: "new", UserID: "fb-1", Price: price(1)})
		require.NoError(t, err)
		ids = append(ids, l.ID)
	}
	other, err := svc.Listings.Create(ctx, CreateListingInput{BookID: bid, Condition: "new", UserID: "fb-2", Price: price(1)})
	require.NoError(t, err)

	_, err = svc.Users.Delete(ctx, uid)
	require.NoError(t, err)

	for _, id := range ids {
		_, err := svc.Listings.Get(ctx, id)
		assert.ErrorIs(t, err, docstore.ErrNotFound)
	}
	_, err = svc.Users.Get(ctx, uid)
	assert.ErrorIs(t, err, docstore.ErrNotFound)

	_, err = svc.Listings.Get(ctx, other.ID)
	assert.NoError(t, err)
}
