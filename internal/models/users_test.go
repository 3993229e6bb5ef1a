package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tracker/internal/models"
)

func TestCreateAndGetUser(t *testing.T) {
	database := newTestDB(t)

	require.NoError(t, models.CreateUser(database, "a@b.com", "alice", "hash"))

	byEmail, err := models.GetUserByEmail(database, "a@b.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, "alice", byEmail.Name)
	assert.Equal(t, "hash", byEmail.PasswordHash)
	assert.False(t, byEmail.Admin)
	assert.NotEmpty(t, byEmail.Created)

	byID, err := models.GetUserByID(database, byEmail.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, byEmail.Email, byID.Email)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	database := newTestDB(t)

	require.NoError(t, models.CreateUser(database, "a@b.com", "alice", "hash"))
	err := models.CreateUser(database, "a@b.com", "other", "hash2")
	assert.ErrorIs(t, err, models.ErrDuplicateEmail)
}

func TestGetUserNotFound(t *testing.T) {
	database := newTestDB(t)

	u, err := models.GetUserByID(database, 42)
	require.NoError(t, err)
	assert.Nil(t, u)

	u, err = models.GetUserByEmail(database, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, u)
}
