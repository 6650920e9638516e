package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) Now() time.Time { return f.t }

func newTestCodec(clock *fakeClock) *Codec {
	return NewCodec("test-secret", 15*time.Minute).WithClock(clock.Now)
}

func sampleClaims() Claims {
	c := Claims{UserID: 42, Role: "Cliente", Name: "Ana", DPI: "1234567890123"}
	c.Subject = "Ana@Example.com"
	return c
}

func TestCodecIssueDecode(t *testing.T) {
	start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Should round trip claims and normalise the email", func(t *testing.T) {
		clock := &fakeClock{t: start}
		codec := newTestCodec(clock)
		tok, err := codec.Issue(sampleClaims(), 30*time.Minute)
		require.NoError(t, err)
		assert.Equal(t, start.Add(30*time.Minute), tok.Exp)

		got, err := codec.Decode(tok.Token)
		require.NoError(t, err)
		assert.Equal(t, "ana@example.com", got.Email())
		assert.Equal(t, uint64(42), got.UserID)
		assert.Equal(t, "Cliente", got.Role)
		assert.Equal(t, "1234567890123", got.DPI)
	})

	t.Run("Should give tokens issued in the same instant distinct ids", func(t *testing.T) {
		codec := newTestCodec(&fakeClock{t: start})
		a, err := codec.Issue(sampleClaims(), time.Minute)
		require.NoError(t, err)
		b, err := codec.Issue(sampleClaims(), time.Minute)
		require.NoError(t, err)
		ca, err := codec.Decode(a.Token)
		require.NoError(t, err)
		cb, err := codec.Decode(b.Token)
		require.NoError(t, err)
		require.NoError(t, uuid.Validate(ca.ID))
		assert.NotEqual(t, ca.ID, cb.ID)
	})

	t.Run("Should accept a token one minute before expiry", func(t *testing.T) {
		clock := &fakeClock{t: start}
		codec := newTestCodec(clock)
		tok, err := codec.Issue(sampleClaims(), 30*time.Minute)
		require.NoError(t, err)
		clock.t = start.Add(29 * time.Minute)
		_, err = codec.Decode(tok.Token)
		assert.NoError(t, err)
	})

	t.Run("Should reject a token one minute after expiry", func(t *testing.T) {
		clock := &fakeClock{t: start}
		codec := newTestCodec(clock)
		tok, err := codec.Issue(sampleClaims(), 30*time.Minute)
		require.NoError(t, err)
		clock.t = start.Add(31 * time.Minute)
		_, err = codec.Decode(tok.Token)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("Should fall back to the default ttl", func(t *testing.T) {
		clock := &fakeClock{t: start}
		codec := newTestCodec(clock)
		tok, err := codec.Issue(sampleClaims(), 0)
		require.NoError(t, err)
		assert.Equal(t, start.Add(15*time.Minute), tok.Exp)
		clock.t = start.Add(16 * time.Minute)
		_, err = codec.Decode(tok.Token)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})
}

func TestCodecDecodeMalformed(t *testing.T) {
	codec := NewCodec("test-secret", 15*time.Minute)

	t.Run("Should reject garbage", func(t *testing.T) {
		_, err := codec.Decode("not.a.jwt")
		assert.ErrorIs(t, err, ErrTokenMalformed)
	})

	t.Run("Should reject a token signed with another secret", func(t *testing.T) {
		tok, err := NewCodec("other-secret", time.Minute).Issue(sampleClaims(), time.Minute)
		require.NoError(t, err)
		_, err = codec.Decode(tok.Token)
		assert.ErrorIs(t, err, ErrTokenMalformed)
	})

	t.Run("Should reject a token using a different algorithm", func(t *testing.T) {
		claims := sampleClaims()
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(time.Hour))
		raw, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("test-secret"))
		require.NoError(t, err)
		_, err = codec.Decode(raw)
		assert.ErrorIs(t, err, ErrTokenMalformed)
	})

	t.Run("Should reject a token without a user id", func(t *testing.T) {
		claims := sampleClaims()
		claims.UserID = 0
		tok, err := codec.Issue(claims, time.Minute)
		require.NoError(t, err)
		_, err = codec.Decode(tok.Token)
		assert.ErrorIs(t, err, ErrTokenMalformed)
	})

	t.Run("Should reject a token without an email", func(t *testing.T) {
		claims := sampleClaims()
		claims.Subject = ""
		tok, err := codec.Issue(claims, time.Minute)
		require.NoError(t, err)
		_, err = codec.Decode(tok.Token)
		assert.ErrorIs(t, err, ErrTokenMalformed)
	})
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass", 4)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(hash, "s3cret-pass"))
	assert.False(t, VerifyPassword(hash, "wrong"))
	assert.False(t, VerifyPassword("not-a-hash", "s3cret-pass"))
}
