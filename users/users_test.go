package users_test

import (
	"encoding/json"
	"testing"

	"github.com/jrsteele09/videotube-server/users"
	"github.com/stretchr/testify/require"
)

func TestValidatePasswordStrength(t *testing.T) {
	tests := []struct {
		name     string
		password string
		valid    bool
	}{
		{"all rules met", "Abc123!@", true},
		{"long and mixed", "VideoTube2024$", true},
		{"missing upper and special", "abc12345", false},
		{"missing special", "Abcdefg1", false},
		{"missing digit", "Abcdefg!", false},
		{"missing lower", "ABCDEF1!", false},
		{"too short", "Ab1!xyz", false},
		{"disallowed character", "Abc123!@#", false},
		{"space", "Abc 123!@", false},
		{"non ascii letter", "Äbc123!@", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := users.ValidatePasswordStrength(tt.password)
			if tt.valid {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, users.ErrWeakPassword)
		})
	}
}

func TestValidEmail(t *testing.T) {
	require.True(t, users.ValidEmail("jane@example.com"))
	require.True(t, users.ValidEmail("jane.doe+tube@mail.example.co"))
	require.False(t, users.ValidEmail("jane@example"))
	require.False(t, users.ValidEmail("jane example@example.com"))
	require.False(t, users.ValidEmail("@example.com"))
	require.False(t, users.ValidEmail("jane@@example.com"))
}

func TestPasswordHashing(t *testing.T) {
	hash, err := users.HashPassword("Abc123!@")
	require.NoError(t, err)
	require.NotEqual(t, "Abc123!@", hash)

	u := &users.User{PasswordHash: hash}
	require.True(t, u.CheckPassword("Abc123!@"))
	require.False(t, u.CheckPassword("Abc123!#"))
}

func TestPublicOmitsSecrets(t *testing.T) {
	u := &users.User{
		ID:           "u1",
		Username:     "jane",
		Email:        "jane@example.com",
		FullName:     "Jane Doe",
		PasswordHash: "$2a$10$hash",
		RefreshToken: "refresh-token",
	}

	for _, v := range []any{u, u.Public()} {
		b, err := json.Marshal(v)
		require.NoError(t, err)
		require.NotContains(t, string(b), "$2a$10$hash")
		require.NotContains(t, string(b), "refresh-token")
		require.Contains(t, string(b), `"watchHistory":`)
	}

	require.Equal(t, []string{}, u.Public().WatchHistory)
}

func TestCloneCopiesWatchHistory(t *testing.T) {
	u := &users.User{ID: "u1"}
	c := u.Clone()
	require.NotNil(t, c.WatchHistory)
	require.Empty(t, c.WatchHistory)

	u.WatchHistory = []string{"v1"}
	c = u.Clone()
	c.WatchHistory[0] = "v2"
	require.Equal(t, "v1", u.WatchHistory[0])

	b, err := json.Marshal(u.Public())
	require.NoError(t, err)
	require.Contains(t, string(b), `"watchHistory":["v1"]`)
}

func TestNormalizeUsername(t *testing.T) {
	require.Equal(t, "janedoe", users.NormalizeUsername("  JaneDoe "))
}
