package auth

import (
	"testing"
	"time"

	"github.com/Tyrowin/duochat/internal/errs"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_Compare(t *testing.T) {
	req := require.New(t)

	hash, err := HashPassword("s3cret-pass")
	req.NoError(err)
	req.NotEqual("s3cret-pass", hash)

	ok, err := ComparePassword("s3cret-pass", hash)
	req.NoError(err)
	req.True(ok)

	ok, err = ComparePassword("wrong-pass", hash)
	req.NoError(err)
	req.False(ok)
}

func TestComparePassword_Malformed_Hash(t *testing.T) {
	ok, err := ComparePassword("whatever", "not-a-bcrypt-hash")
	require.Error(t, err)
	require.False(t, ok)
}

func TestTokenIssuer_Issue_And_Verify(t *testing.T) {
	req := require.New(t)
	issuer, err := NewTokenIssuer("test-secret", time.Hour)
	req.NoError(err)

	token, err := issuer.Issue("user-1", "alice@example.com")
	req.NoError(err)

	claims, err := issuer.Verify(token)
	req.NoError(err)
	req.Equal("user-1", claims.UserID)
	req.Equal("user-1", claims.Subject)
	req.Equal("alice@example.com", claims.Email)
}

func TestTokenIssuer_Rejects_Foreign_Signature(t *testing.T) {
	req := require.New(t)
	mine, err := NewTokenIssuer("mine", time.Hour)
	req.NoError(err)
	theirs, err := NewTokenIssuer("theirs", time.Hour)
	req.NoError(err)

	token, err := theirs.Issue("user-1", "alice@example.com")
	req.NoError(err)

	_, err = mine.Verify(token)
	req.Error(err)
}

func TestTokenIssuer_Rejects_Expired(t *testing.T) {
	req := require.New(t)
	issuer := &TokenIssuer{secret: []byte("secret"), duration: -time.Minute}

	token, err := issuer.Issue("user-1", "alice@example.com")
	req.NoError(err)

	_, err = issuer.Verify(token)
	req.Error(err)
}

func TestNewTokenIssuer_Requires_Secret(t *testing.T) {
	_, err := NewTokenIssuer("", time.Hour)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		payload any
		wantErr bool
	}{
		{"valid register", RegisterRequest{FullName: "Alice", Email: "alice@example.com", Password: "secret1"}, false},
		{"missing name", RegisterRequest{Email: "alice@example.com", Password: "secret1"}, true},
		{"bad email", RegisterRequest{FullName: "Alice", Email: "alice", Password: "secret1"}, true},
		{"short password", RegisterRequest{FullName: "Alice", Email: "alice@example.com", Password: "abc"}, true},
		{"valid login", LoginRequest{Email: "alice@example.com", Password: "x"}, false},
		{"empty login", LoginRequest{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.payload)
			if tt.wantErr {
				require.ErrorIs(t, err, errs.ErrInvalidRequest)
				return
			}
			require.NoError(t, err)
		})
	}
}
