package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchema_DefaultsHaveNoRelations(t *testing.T) {
	s, err := NewSchema("")
	require.NoError(t, err)
	assert.Equal(t, DefaultUserTable, s.Table())

	for _, ut := range UserTypes() {
		c, ok := s.Capabilities(ut)
		require.True(t, ok, "variant %s must be registered", ut)
		assert.Nil(t, c.Assets)
		assert.False(t, s.HasAssets(ut))
		_, ok = s.Relation(ut, RelationAssets)
		assert.False(t, ok)
	}
}

func TestSchema_WithAssetsGatesPerVariant(t *testing.T) {
	s := MustSchema("person", WithAssets(UserTypeAdmin))

	assert.Equal(t, "person", s.Table())
	assert.True(t, s.HasAssets(UserTypeAdmin))
	assert.False(t, s.HasAssets(UserTypeNormal))

	rel, ok := s.Relation(UserTypeAdmin, RelationAssets)
	require.True(t, ok)
	assert.Equal(t, AssetsRelation, rel)

	_, ok = s.Relation(UserTypeAdmin, "friends")
	assert.False(t, ok)
	_, ok = s.Relation("root", RelationAssets)
	assert.False(t, ok)
}

func TestSchema_Errors(t *testing.T) {
	_, err := NewSchema("users; drop")
	require.ErrorIs(t, err, ErrInvalidSchema)

	_, err = NewSchema("users", WithAssets("root"))
	require.ErrorIs(t, err, ErrInvalidSchema)
	require.ErrorIs(t, err, ErrInvalidUserType)

	assert.Panics(t, func() { MustSchema("bad name") })
}

func TestBase(t *testing.T) {
	var b Base
	assert.False(t, b.Persisted())
	assert.False(t, b.IsDeleted())
}
