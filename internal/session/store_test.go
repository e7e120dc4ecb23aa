package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopbot/internal/catalog"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New([]catalog.Brand{
		{ID: "waka", Name: "Waka", Flavors: []catalog.Flavor{
			{ID: "waka_mango", Name: "Mango Ice", PriceKZT: 10000, PriceUSDT: 19},
			{ID: "waka_blueberry", Name: "Blueberry Ice", PriceKZT: 10000, PriceUSDT: 19},
		}},
	})
	require.NoError(t, err)
	return cat
}

func TestGetOrCreateStartsAtStart(t *testing.T) {
	s := NewStore(testCatalog(t))

	sess := s.GetOrCreate(1)
	assert.Equal(t, StateStart, sess.State)
	assert.Equal(t, int64(1), sess.UserID)
	assert.False(t, s.InProgress(1))
	assert.Equal(t, 1, s.Len())
}

func TestFlavorSelectionPopulatesDraft(t *testing.T) {
	s := NewStore(testCatalog(t))

	sess, err := s.RecordFlavorSelection(1, "waka_mango")
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingAddress, sess.State)
	assert.Equal(t, "Waka - Mango Ice", sess.Draft.ProductName)
	assert.Equal(t, 10000, sess.Draft.PriceKZT)
	assert.Equal(t, 19, sess.Draft.PriceUSDT)
	assert.True(t, s.InProgress(1))
}

func TestFlavorSelectionUnknown(t *testing.T) {
	s := NewStore(testCatalog(t))

	_, err := s.RecordFlavorSelection(1, "elfbar_grape")
	assert.ErrorIs(t, err, ErrUnknownFlavor)
	assert.Equal(t, StateStart, s.StateOf(1))
}

func TestReselectionOverwritesDraft(t *testing.T) {
	s := NewStore(testCatalog(t))

	_, err := s.RecordFlavorSelection(1, "waka_mango")
	require.NoError(t, err)
	_, err = s.RecordAddress(1, "old street")
	require.NoError(t, err)

	// Second pass through the flow must not keep the stale address.
	sess, err := s.RecordFlavorSelection(1, "waka_blueberry")
	require.NoError(t, err)
	assert.Equal(t, "Waka - Blueberry Ice", sess.Draft.ProductName)
	assert.Empty(t, sess.Draft.Address)
	assert.Equal(t, StateAwaitingAddress, sess.State)
}

func TestAddressRequiresAwaitingAddress(t *testing.T) {
	s := NewStore(testCatalog(t))

	_, err := s.RecordAddress(1, "Almaty, st. 1")
	assert.ErrorIs(t, err, ErrUnexpectedInput)

	_, err = s.RecordFlavorSelection(1, "waka_mango")
	require.NoError(t, err)
	sess, err := s.RecordAddress(1, "Almaty, st. 1")
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingPhone, sess.State)
	assert.Equal(t, "Almaty, st. 1", sess.Draft.Address)
}

func TestPhoneValidation(t *testing.T) {
	cases := []struct {
		phone string
		valid bool
	}{
		{"+77001234567", true},
		{"+7700123456a", true},  // digit-ness of the tail is not checked
		{"+7абвгдежзик", true},  // length counts characters, not bytes
		{"+7абвгдежзи", false},  // 11 characters
		{"+7700123456", false},  // too short
		{"+770012345678", false},
		{"87001234567", false}, // missing +7 prefix
		{"", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.valid, ValidPhone(tc.phone), "phone %q", tc.phone)
	}
}

func TestRecordPhoneCompletesDraft(t *testing.T) {
	s := NewStore(testCatalog(t))

	_, err := s.RecordFlavorSelection(1, "waka_mango")
	require.NoError(t, err)
	_, err = s.RecordAddress(1, "Almaty, st. 1")
	require.NoError(t, err)

	// Invalid phone keeps the state for a re-prompt.
	_, err = s.RecordPhone(1, "12345")
	assert.ErrorIs(t, err, ErrInvalidPhone)
	assert.Equal(t, StateAwaitingPhone, s.StateOf(1))

	draft, err := s.RecordPhone(1, "+77001234567")
	require.NoError(t, err)
	assert.Equal(t, Draft{
		ProductName: "Waka - Mango Ice",
		PriceKZT:    10000,
		PriceUSDT:   19,
		Address:     "Almaty, st. 1",
		Phone:       "+77001234567",
	}, draft)
	assert.Equal(t, StateStart, s.StateOf(1))
}

func TestRecordPhoneWrongState(t *testing.T) {
	s := NewStore(testCatalog(t))

	_, err := s.RecordPhone(1, "+77001234567")
	assert.ErrorIs(t, err, ErrUnexpectedInput)
}

func TestDraftSnapshotDoesNotAliasSession(t *testing.T) {
	s := NewStore(testCatalog(t))

	_, err := s.RecordFlavorSelection(1, "waka_mango")
	require.NoError(t, err)
	_, err = s.RecordAddress(1, "Almaty, st. 1")
	require.NoError(t, err)
	draft, err := s.RecordPhone(1, "+77001234567")
	require.NoError(t, err)

	// A new flow must not mutate the returned draft.
	_, err = s.RecordFlavorSelection(1, "waka_blueberry")
	require.NoError(t, err)
	assert.Equal(t, "Waka - Mango Ice", draft.ProductName)
}

func TestResetReturnsToStart(t *testing.T) {
	s := NewStore(testCatalog(t))

	_, err := s.RecordFlavorSelection(1, "waka_mango")
	require.NoError(t, err)
	s.Reset(1)
	assert.Equal(t, StateStart, s.StateOf(1))
}

func TestPruneIdle(t *testing.T) {
	s := NewStore(testCatalog(t))
	now := time.Now()
	s.now = func() time.Time { return now }

	s.GetOrCreate(1)
	s.GetOrCreate(2)

	now = now.Add(2 * time.Hour)
	s.GetOrCreate(2) // user 2 stays active

	pruned := s.PruneIdle(time.Hour)
	assert.Equal(t, 1, pruned)
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 0, s.PruneIdle(0), "zero maxIdle disables pruning")
}
