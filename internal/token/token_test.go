package token

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("access-secret")

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	codec := NewCodec(WithClock(fixedClock(now)))

	tests := []Claims{
		{Email: "a@x.com", Role: "user"},
		{Email: "admin@x.com", Role: "admin"},
		{Email: "Mixed.Case@X.com", Role: ""},
	}
	for _, in := range tests {
		t.Run(in.Email, func(t *testing.T) {
			signed, err := codec.Issue(in, testSecret, time.Minute)
			require.NoError(t, err)

			out, err := codec.Verify(signed, testSecret)
			require.NoError(t, err)
			assert.Equal(t, in.Email, out.Email)
			assert.Equal(t, in.Role, out.Role)
			assert.True(t, out.IssuedAt.Equal(now))
			assert.True(t, out.ExpiresAt.Equal(now.Add(time.Minute)))
		})
	}
}

func TestIssue_Deterministic(t *testing.T) {
	codec := NewCodec(WithClock(fixedClock(time.Unix(1_700_000_000, 0))))
	a, err := codec.Issue(Claims{Email: "a@x.com", Role: "user"}, testSecret, time.Hour)
	require.NoError(t, err)
	b, err := codec.Issue(Claims{Email: "a@x.com", Role: "user"}, testSecret, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestIssue_EmptySecret(t *testing.T) {
	_, err := NewCodec().Issue(Claims{Email: "a@x.com"}, nil, time.Minute)
	assert.Error(t, err)
}

func TestVerify_Expired(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	clock := now
	codec := NewCodec(WithClock(func() time.Time { return clock }))

	signed, err := codec.Issue(Claims{Email: "a@x.com", Role: "user"}, testSecret, 10*time.Minute)
	require.NoError(t, err)

	clock = now.Add(10*time.Minute + time.Second)
	_, err = codec.Verify(signed, testSecret)

	var tokErr *Error
	require.ErrorAs(t, err, &tokErr)
	assert.Equal(t, Expired, tokErr.Kind)
	assert.True(t, IsExpired(err))
}

func TestVerify_WrongSecret(t *testing.T) {
	codec := NewCodec()
	signed, err := codec.Issue(Claims{Email: "a@x.com", Role: "user"}, testSecret, time.Minute)
	require.NoError(t, err)

	_, err = codec.Verify(signed, []byte("refresh-secret"))

	var tokErr *Error
	require.ErrorAs(t, err, &tokErr)
	assert.Equal(t, BadSignature, tokErr.Kind)
	assert.False(t, IsExpired(err))
}

func TestVerify_Malformed(t *testing.T) {
	codec := NewCodec()
	inputs := []string{
		"",
		"   ",
		"not-a-jwt",
		"a.b.c",
		strings.Repeat("x", 4096),
		"eyJhbGciOiJIUzI1NiJ9.!!!.sig",
	}
	for _, in := range inputs {
		_, err := codec.Verify(in, testSecret)
		var tokErr *Error
		require.ErrorAs(t, err, &tokErr, "input %q", in)
		assert.Equal(t, Malformed, tokErr.Kind, "input %q", in)
	}
}

func TestVerify_RejectsNoneAlgorithm(t *testing.T) {
	tok := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"userEmail": "a@x.com",
		"iat":       time.Now().Unix(),
		"exp":       time.Now().Add(time.Hour).Unix(),
	})
	signed, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewCodec().Verify(signed, testSecret)

	var tokErr *Error
	require.ErrorAs(t, err, &tokErr)
	assert.Equal(t, BadSignature, tokErr.Kind)
}

func TestVerify_MissingClaims(t *testing.T) {
	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userEmail": "a@x.com",
		"iat":       time.Now().Unix(),
	})
	signed, err := noExp.SignedString(testSecret)
	require.NoError(t, err)
	_, err = NewCodec().Verify(signed, testSecret)
	var tokErr *Error
	require.ErrorAs(t, err, &tokErr)
	assert.Equal(t, Malformed, tokErr.Kind)

	noEmail := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err = noEmail.SignedString(testSecret)
	require.NoError(t, err)
	_, err = NewCodec().Verify(signed, testSecret)
	require.ErrorAs(t, err, &tokErr)
	assert.Equal(t, Malformed, tokErr.Kind)
}
