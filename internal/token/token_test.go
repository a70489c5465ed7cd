package token_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/akovalyov/deeptrace/internal/apperr"
	"github.com/akovalyov/deeptrace/internal/token"
)

func TestNewManager_EmptySecret(t *testing.T) {
	_, err := token.NewManager("")
	require.Error(t, err)
}

func TestIssueVerify_Roundtrip(t *testing.T) {
	m, err := token.NewManager("test-secret")
	require.NoError(t, err)

	signed, err := m.Issue("user-1", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	subject, err := m.Verify(signed)
	require.NoError(t, err)
	require.Equal(t, "user-1", subject)
}

func TestIssue_InvalidInput(t *testing.T) {
	m, err := token.NewManager("test-secret")
	require.NoError(t, err)

	_, err = m.Issue("", time.Hour)
	require.Error(t, err)

	_, err = m.Issue("user-1", 0)
	require.Error(t, err)

	_, err = m.Issue("user-1", -time.Minute)
	require.Error(t, err)
}

func TestVerify_WrongSecret(t *testing.T) {
	issuer, err := token.NewManager("secret-a")
	require.NoError(t, err)
	verifier, err := token.NewManager("secret-b")
	require.NoError(t, err)

	signed, err := issuer.Issue("user-1", time.Hour)
	require.NoError(t, err)

	_, err = verifier.Verify(signed)
	require.True(t, errors.Is(err, apperr.ErrInvalidToken))
}

func TestVerify_Garbage(t *testing.T) {
	m, err := token.NewManager("test-secret")
	require.NoError(t, err)

	for _, raw := range []string{"", "not-a-token", "a.b.c"} {
		_, err := m.Verify(raw)
		require.True(t, errors.Is(err, apperr.ErrInvalidToken), "raw=%q", raw)
	}
}

func TestVerify_Expired(t *testing.T) {
	m, err := token.NewManager("test-secret")
	require.NoError(t, err)

	signed, err := m.Issue("user-1", time.Millisecond)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	_, err = m.Verify(signed)
	require.True(t, errors.Is(err, apperr.ErrInvalidToken))
}
