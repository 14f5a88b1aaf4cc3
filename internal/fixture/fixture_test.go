package fixture_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/jbkit/internal/dbtest"
	"github.com/dmitrijs2005/jbkit/internal/dbx"
	"github.com/dmitrijs2005/jbkit/internal/fixture"
	"github.com/dmitrijs2005/jbkit/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactory_Deterministic(t *testing.T) {
	a := fixture.NewFactory(fixture.DefaultSeed)
	b := fixture.NewFactory(fixture.DefaultSeed)

	for i := 1; i <= 3; i++ {
		ua, err := a.User()
		require.NoError(t, err)
		ub, err := b.User()
		require.NoError(t, err)

		assert.Equal(t, ua.Email, ub.Email)
		assert.Equal(t, ua.Name, ub.Name)
		assert.Equal(t, ua.DOB, ub.DOB)
		assert.NotEqual(t, ua.Password(), ub.Password(), "salts differ")
		assert.True(t, ua.IsCorrectPassword(fixture.Password(i)))
		require.NoError(t, ua.Validate())
	}

	assert.Equal(t, a.Asset(1), b.Asset(1))
}

func TestFactory_Sequences(t *testing.T) {
	f := fixture.NewFactory(1)
	u1, err := f.User()
	require.NoError(t, err)
	u2, err := f.User()
	require.NoError(t, err)
	assert.Equal(t, "user1@example.com", u1.Email)
	assert.Equal(t, "user2@example.com", u2.Email)

	a1 := f.Asset(0)
	a2 := f.Asset(7)
	assert.Regexp(t, `1$`, a1.S3Key)
	assert.Regexp(t, `2$`, a2.S3Bucket)
	assert.Zero(t, a1.CreatedByID)
	assert.Equal(t, int64(7), a2.CreatedByID)
}

func TestSeed(t *testing.T) {
	db, m := dbtest.Open(t, models.WithAssets(models.UserTypeAdmin))
	ctx := context.Background()

	s := dbx.NewSession(db, nil)
	defer s.Close()

	st, err := fixture.Seed(ctx, s, m, fixture.NewFactory(fixture.DefaultSeed), 10, nil)
	require.NoError(t, err)
	assert.Equal(t, fixture.Stats{Users: 10, Assets: 10}, st)
	assert.False(t, s.Active(), "seed commits once at the end")

	admins, err := m.Users().ListByType(ctx, db, models.UserTypeAdmin)
	require.NoError(t, err)
	require.Len(t, admins, 2)

	owned, err := m.Assets().ListForUser(ctx, db, admins[0])
	require.NoError(t, err)
	assert.Len(t, owned, 1)

	var users, assets, unowned int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&users))
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM asset`).Scan(&assets))
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM asset WHERE createdby_id IS NULL`).Scan(&unowned))
	assert.Equal(t, 10, users)
	assert.Equal(t, 10, assets)
	assert.Equal(t, 8, unowned, "normal users have no assets relationship")

	// same seed again: users are updated in place, asset keys repeat too
	_, err = fixture.Seed(ctx, s, m, fixture.NewFactory(fixture.DefaultSeed), 10, nil)
	require.NoError(t, err)
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&users))
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM asset`).Scan(&assets))
	assert.Equal(t, 10, users)
	assert.Equal(t, 10, assets)
}

type failingCommit struct {
	*dbx.Session
}

func (f failingCommit) Commit() error {
	return errors.New("commit failed")
}

func TestSeed_RollsBackOnError(t *testing.T) {
	db, m := dbtest.Open(t)
	ctx := context.Background()

	s := dbx.NewSession(db, nil)
	defer s.Close()

	_, err := fixture.Seed(ctx, failingCommit{s}, m, fixture.NewFactory(1), 3, nil)
	require.EqualError(t, err, "commit failed")
	assert.False(t, s.Active())

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&n))
	assert.Zero(t, n)

	_, err = fixture.Seed(ctx, s, m, fixture.NewFactory(1), 0, nil)
	require.ErrorIs(t, err, fixture.ErrBadCount)
}
