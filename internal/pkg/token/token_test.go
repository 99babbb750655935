package token

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_IssueAndParse(t *testing.T) {
	m := NewManager("secret", time.Hour)
	userId, tokenId := uuid.New(), uuid.New()

	raw, expiresAt, err := m.Issue(userId, tokenId, time.Now())
	require.NoError(t, err)
	assert.False(t, expiresAt.IsZero())

	claims, err := m.Parse(raw)
	require.NoError(t, err)

	gotUser, err := claims.UserId()
	require.NoError(t, err)
	assert.Equal(t, userId, gotUser)

	gotToken, err := claims.TokenId()
	require.NoError(t, err)
	assert.Equal(t, tokenId, gotToken)
}

func TestManager_Parse_Rejects(t *testing.T) {
	m := NewManager("secret", time.Hour)
	raw, _, err := m.Issue(uuid.New(), uuid.New(), time.Now())
	require.NoError(t, err)

	tests := []struct {
		name string
		mgr  *Manager
		raw  string
	}{
		{name: "garbage", mgr: m, raw: "not-a-token"},
		{name: "wrong secret", mgr: NewManager("other", time.Hour), raw: raw},
		{name: "tampered", mgr: m, raw: raw + "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.mgr.Parse(tt.raw)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestManager_Parse_Expired(t *testing.T) {
	m := NewManager("secret", time.Minute)
	raw, _, err := m.Issue(uuid.New(), uuid.New(), time.Now().Add(-time.Hour))
	require.NoError(t, err)

	_, err = m.Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestManager_NoTTL(t *testing.T) {
	m := NewManager("secret", 0)
	raw, expiresAt, err := m.Issue(uuid.New(), uuid.New(), time.Now())
	require.NoError(t, err)
	assert.True(t, expiresAt.IsZero())

	_, err = m.Parse(raw)
	assert.NoError(t, err)
}

func TestHash(t *testing.T) {
	assert.Len(t, Hash("abc"), 64)
	assert.Equal(t, Hash("abc"), Hash("abc"))
	assert.NotEqual(t, Hash("abc"), Hash("abd"))
}
