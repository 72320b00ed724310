package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"huddle_backend/internal/models"
	"huddle_backend/pkg/apperrors"
)

func testUser() *models.User {
	avatar := "https://cdn.example.com/a.png"
	return &models.User{
		ID:        "u1",
		Name:      "Alice",
		Email:     "alice@example.com",
		AvatarURL: &avatar,
	}
}

func TestIssueAndParseRoundTrip(t *testing.T) {
	tokens := NewTokenManager("test-secret", 60)

	token, err := tokens.Issue(testUser())
	require.NoError(t, err)

	identity, err := tokens.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", identity.ID)
	assert.Equal(t, "Alice", identity.Name)
	assert.Equal(t, "alice@example.com", identity.Email)
	require.NotNil(t, identity.AvatarURL)
	assert.Equal(t, "https://cdn.example.com/a.png", *identity.AvatarURL)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := NewTokenManager("secret-a", 60).Issue(testUser())
	require.NoError(t, err)

	_, err = NewTokenManager("secret-b", 60).Parse(token)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeInvalidToken, appErr.Code)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	tokens := NewTokenManager("test-secret", -1)

	token, err := tokens.Issue(testUser())
	require.NoError(t, err)

	_, err = tokens.Parse(token)
	assert.Error(t, err)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := NewTokenManager("test-secret", 60).Parse("not.a.token")
	assert.Error(t, err)
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)

	assert.True(t, CheckPassword(hash, "correct horse battery staple"))
	assert.False(t, CheckPassword(hash, "wrong password"))
}
