package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeed_Idempotent(t *testing.T) {
	db := NewDB()

	require.NoError(t, Seed(db))
	forums := NewForumRepository(db)
	forum, err := forums.FindBySlug("demo")
	require.NoError(t, err)

	// second run must not duplicate anything
	require.NoError(t, Seed(db))
	owned, err := forums.FindByOwner(forum.OwnerID)
	require.NoError(t, err)
	assert.Len(t, owned, 1)
}
