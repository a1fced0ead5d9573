package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key"

func TestSignSessionID_RoundTrip(t *testing.T) {
	// Arrange
	sessionID := "0b9f6a1d-session-id"

	// Act
	token, err := SignSessionID(sessionID, testSecret, 1*time.Hour)
	require.NoError(t, err)

	extracted, err := VerifySessionToken(token, testSecret)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, sessionID, extracted)
}

func TestVerifySessionToken_WrongSecret(t *testing.T) {
	// Arrange
	token, err := SignSessionID("some-session", testSecret, 1*time.Hour)
	require.NoError(t, err)

	// Act
	_, err = VerifySessionToken(token, "another-secret")

	// Assert
	assert.ErrorIs(t, err, ErrInvalidToken, "A token signed with another key must be rejected")
}

func TestVerifySessionToken_Tampered(t *testing.T) {
	// Arrange
	token, err := SignSessionID("some-session", testSecret, 1*time.Hour)
	require.NoError(t, err)
	tampered := token[:len(token)-2] + "xx"

	// Act
	_, err = VerifySessionToken(tampered, testSecret)

	// Assert
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifySessionToken_Expired(t *testing.T) {
	// Arrange: already expired token
	token, err := SignSessionID("some-session", testSecret, -1*time.Minute)
	require.NoError(t, err)

	// Act
	_, err = VerifySessionToken(token, testSecret)

	// Assert
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestVerifySessionToken_Garbage(t *testing.T) {
	_, err := VerifySessionToken("not-a-token", testSecret)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
