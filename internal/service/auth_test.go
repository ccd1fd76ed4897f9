package service

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/pdfdesk/backend/internal/config"
	"github.com/pdfdesk/backend/internal/model"
	"github.com/pdfdesk/backend/internal/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestParseAuthSettings(t *testing.T) {
	base := testAuthConfig()

	settings, err := ParseAuthSettings(base)
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, settings.AccessTTL)
	assert.Equal(t, 720*time.Hour, settings.RefreshTTL)
	assert.Equal(t, 4, settings.BcryptCost)
	assert.Equal(t, "refreshToken", settings.Cookie.Name)
	assert.Equal(t, "/", settings.Cookie.Path)
	assert.True(t, settings.Cookie.Secure)
	assert.Equal(t, int((720 * time.Hour).Seconds()), settings.Cookie.MaxAge)

	tests := []struct {
		name   string
		mutate func(*config.AuthConfig)
	}{
		{"missing-access-secret", func(c *config.AuthConfig) { c.AccessSecret = "" }},
		{"same-secrets", func(c *config.AuthConfig) { c.RefreshSecret = c.AccessSecret }},
		{"bad-access-ttl", func(c *config.AuthConfig) { c.AccessTTL = "soon" }},
		{"negative-refresh-ttl", func(c *config.AuthConfig) { c.RefreshTTL = "-1h" }},
		{"bad-cost", func(c *config.AuthConfig) { c.BcryptCost = "99" }},
		{"bad-reset-link", func(c *config.AuthConfig) { c.ResetUILink = "not a url" }},
		{"bad-secure", func(c *config.AuthConfig) { c.CookieSecure = "maybe" }},
		{"none-without-secure", func(c *config.AuthConfig) { c.CookieSameSite = "none"; c.CookieSecure = "false" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testAuthConfig()
			tt.mutate(&cfg)
			_, err := ParseAuthSettings(cfg)
			assert.ErrorIs(t, err, ErrMisconfigured)
		})
	}
}

func TestParseAuthSettings_DefaultCost(t *testing.T) {
	cfg := testAuthConfig()
	cfg.BcryptCost = ""
	settings, err := ParseAuthSettings(cfg)
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, settings.BcryptCost)
}

func TestLogin_IssuesTokensWithUserClaims(t *testing.T) {
	f := newAuthFixture(t)
	f.addUser(t, "a@x.com", "secret1", model.RoleUser)
	f.addUser(t, "admin@x.com", "secret2", model.RoleAdmin)

	for _, tc := range []struct {
		email, password string
		role            model.Role
	}{
		{"a@x.com", "secret1", model.RoleUser},
		{"admin@x.com", "secret2", model.RoleAdmin},
	} {
		pair, err := f.svc.Login(context.Background(), tc.email, tc.password)
		require.NoError(t, err)

		codec := token.NewCodec(token.WithClock(f.clock.Now))
		access, err := codec.Verify(pair.AccessToken, []byte(testAccessSecret))
		require.NoError(t, err)
		assert.Equal(t, tc.email, access.Email)
		assert.Equal(t, string(tc.role), access.Role)
		assert.Equal(t, f.clock.Now().Add(15*time.Minute).Unix(), access.ExpiresAt.Unix())

		refresh, err := codec.Verify(pair.RefreshToken, []byte(testRefreshSecret))
		require.NoError(t, err)
		assert.Equal(t, tc.email, refresh.Email)
		assert.Equal(t, f.clock.Now().Add(720*time.Hour).Unix(), refresh.ExpiresAt.Unix())

		_, err = codec.Verify(pair.RefreshToken, []byte(testAccessSecret))
		assert.Error(t, err)
	}
}

func TestLogin_Failures(t *testing.T) {
	f := newAuthFixture(t)
	f.addUser(t, "a@x.com", "secret1", model.RoleUser)

	_, err := f.svc.Login(context.Background(), "a@x.com", "wrong-password")
	assert.ErrorIs(t, err, ErrBadCredentials)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = f.svc.Login(context.Background(), "nobody@x.com", "secret1")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = f.svc.Login(context.Background(), "A@x.com", "secret1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLogin_StoreFailureIsNotClientError(t *testing.T) {
	svc, err := NewAuthService(failingStore{err: errStoreDown}, &fakeNotifier{}, testAuthConfig())
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "a@x.com", "secret1")
	require.Error(t, err)
	assert.ErrorIs(t, err, errStoreDown)

	var authErr *AuthError
	assert.NotErrorAs(t, err, &authErr)
}

func TestBlockedAndDeletedUsersAreForbiddenEverywhere(t *testing.T) {
	for _, variant := range []string{"blocked", "deleted"} {
		t.Run(variant, func(t *testing.T) {
			f := newAuthFixture(t)
			ctx := context.Background()
			user := f.addUser(t, "a@x.com", "secret1", model.RoleUser)

			pair, err := f.svc.Login(ctx, "a@x.com", "secret1")
			require.NoError(t, err)
			require.NoError(t, f.svc.ForgotPassword(ctx, "a@x.com"))
			resetLink, err := url.Parse(f.notifier.sent[0].link)
			require.NoError(t, err)
			resetToken := resetLink.Query().Get("token")

			want := ErrUserBlocked
			if variant == "blocked" {
				_, err = f.store.UpdateStatusByID(ctx, user.ID, model.StatusBlocked)
			} else {
				want = ErrUserDeleted
				err = f.store.SetDeleted(user.ID, true)
			}
			require.NoError(t, err)

			_, err = f.svc.Login(ctx, "a@x.com", "secret1")
			assert.ErrorIs(t, err, want)

			err = f.svc.ChangePassword(ctx, model.Identity{Email: "a@x.com", Role: model.RoleUser}, "secret1", "secret2")
			assert.ErrorIs(t, err, want)

			_, err = f.svc.RefreshAccessToken(ctx, pair.RefreshToken)
			assert.ErrorIs(t, err, want)

			assert.ErrorIs(t, f.svc.ForgotPassword(ctx, "a@x.com"), want)

			err = f.svc.ResetPassword(ctx, "a@x.com", "secret2", resetToken)
			assert.ErrorIs(t, err, want)

			_, err = NewGate(f.svc).Check(bearerRequest(pair.AccessToken))
			assert.ErrorIs(t, err, want)
			assert.ErrorIs(t, err, ErrForbidden)
		})
	}
}

func TestChangePassword(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.addUser(t, "a@x.com", "secret1", model.RoleUser)
	identity := model.Identity{Email: "a@x.com", Role: model.RoleUser}
	oldHash := f.passwordHash(t, "a@x.com")

	err := f.svc.ChangePassword(ctx, identity, "wrong", "secret2")
	assert.ErrorIs(t, err, ErrBadCredentials)
	assert.Equal(t, oldHash, f.passwordHash(t, "a@x.com"))

	f.clock.Advance(time.Minute)
	require.NoError(t, f.svc.ChangePassword(ctx, identity, "secret1", "secret2"))

	user, err := f.store.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.NotNil(t, user.PasswordChangedAt)
	assert.True(t, user.PasswordChangedAt.Equal(f.clock.Now()))
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret2")))

	_, err = f.svc.Login(ctx, "a@x.com", "secret1")
	assert.ErrorIs(t, err, ErrBadCredentials)
	_, err = f.svc.Login(ctx, "a@x.com", "secret2")
	assert.NoError(t, err)
}

func TestChangePassword_ReplayedAccessTokenIsRejected(t *testing.T) {
	tests := []struct {
		name  string
		delay time.Duration
	}{
		{"same-second", 0},
		{"half-second-later", 500 * time.Millisecond},
		{"seconds-later", 2 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture(t)
			ctx := context.Background()
			f.addUser(t, "a@x.com", "secret1", model.RoleUser)
			gate := NewGate(f.svc, model.RoleUser, model.RoleAdmin)

			// login lands mid-second so iat is truncated below the login time
			f.clock.Advance(250 * time.Millisecond)
			pair, err := f.svc.Login(ctx, "a@x.com", "secret1")
			require.NoError(t, err)

			identity, err := gate.Check(bearerRequest(pair.AccessToken))
			require.NoError(t, err)

			f.clock.Advance(tt.delay)
			require.NoError(t, f.svc.ChangePassword(ctx, *identity, "secret1", "secret2"))

			_, err = gate.Check(bearerRequest(pair.AccessToken))
			assert.ErrorIs(t, err, ErrPasswordChanged)

			_, err = f.svc.RefreshAccessToken(ctx, pair.RefreshToken)
			assert.ErrorIs(t, err, ErrPasswordChanged)

			f.clock.Advance(time.Second)
			fresh, err := f.svc.Login(ctx, "a@x.com", "secret2")
			require.NoError(t, err)
			_, err = gate.Check(bearerRequest(fresh.AccessToken))
			assert.NoError(t, err)
		})
	}
}

func TestRefreshAccessToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.addUser(t, "a@x.com", "secret1", model.RoleAdmin)

	pair, err := f.svc.Login(ctx, "a@x.com", "secret1")
	require.NoError(t, err)

	f.clock.Advance(30 * time.Minute)
	access, err := f.svc.RefreshAccessToken(ctx, pair.RefreshToken)
	require.NoError(t, err)

	claims, err := token.NewCodec(token.WithClock(f.clock.Now)).Verify(access, []byte(testAccessSecret))
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, f.clock.Now().Unix(), claims.IssuedAt.Unix())
}

func TestRefreshAccessToken_InvalidTokens(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.addUser(t, "a@x.com", "secret1", model.RoleUser)

	wrongSecret, err := token.NewCodec(token.WithClock(f.clock.Now)).Issue(token.Claims{Email: "a@x.com", Role: "user"}, []byte("some-other-secret"), time.Hour)
	require.NoError(t, err)
	_, err = f.svc.RefreshAccessToken(ctx, wrongSecret)
	assert.ErrorIs(t, err, ErrInvalidToken)

	pair, err := f.svc.Login(ctx, "a@x.com", "secret1")
	require.NoError(t, err)
	_, err = f.svc.RefreshAccessToken(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = f.svc.RefreshAccessToken(ctx, "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = f.svc.RefreshAccessToken(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidToken)

	f.clock.Advance(721 * time.Hour)
	_, err = f.svc.RefreshAccessToken(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshAccessToken_UnknownUser(t *testing.T) {
	f := newAuthFixture(t)
	orphan, err := token.NewCodec(token.WithClock(f.clock.Now)).Issue(token.Claims{Email: "ghost@x.com", Role: "user"}, []byte(testRefreshSecret), time.Hour)
	require.NoError(t, err)

	_, err = f.svc.RefreshAccessToken(context.Background(), orphan)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestForgotPassword_SendsExactlyOneLink(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.addUser(t, "a+b@x.com", "secret1", model.RoleUser)

	require.NoError(t, f.svc.ForgotPassword(ctx, "a+b@x.com"))
	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, "a+b@x.com", f.notifier.sent[0].email)

	link, err := url.Parse(f.notifier.sent[0].link)
	require.NoError(t, err)
	assert.Equal(t, "app.test", link.Host)
	assert.Equal(t, "/reset-password", link.Path)
	assert.Equal(t, "a+b@x.com", link.Query().Get("email"))

	claims, err := token.NewCodec(token.WithClock(f.clock.Now)).Verify(link.Query().Get("token"), []byte(testAccessSecret))
	require.NoError(t, err)
	assert.Equal(t, "a+b@x.com", claims.Email)
	assert.Equal(t, "user", claims.Role)
	assert.Equal(t, 10*time.Minute, claims.ExpiresAt.Sub(claims.IssuedAt))
}

func TestForgotPassword_NotifierFailureIsSwallowed(t *testing.T) {
	f := newAuthFixture(t)
	f.addUser(t, "a@x.com", "secret1", model.RoleUser)
	f.notifier.err = errStoreDown

	assert.NoError(t, f.svc.ForgotPassword(context.Background(), "a@x.com"))
	assert.Len(t, f.notifier.sent, 1)
}

func TestForgotPassword_UnknownUserSendsNothing(t *testing.T) {
	f := newAuthFixture(t)

	err := f.svc.ForgotPassword(context.Background(), "nobody@x.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Empty(t, f.notifier.sent)
}

func resetTokenFor(t *testing.T, f *authFixture, email string) string {
	t.Helper()
	require.NoError(t, f.svc.ForgotPassword(context.Background(), email))
	link, err := url.Parse(f.notifier.sent[len(f.notifier.sent)-1].link)
	require.NoError(t, err)
	return link.Query().Get("token")
}

func TestResetPassword(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.addUser(t, "a@x.com", "secret1", model.RoleUser)
	resetToken := resetTokenFor(t, f, "a@x.com")

	f.clock.Advance(time.Minute)
	require.NoError(t, f.svc.ResetPassword(ctx, "a@x.com", "secret9", "Bearer "+resetToken))

	user, err := f.store.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.NotNil(t, user.PasswordChangedAt)
	assert.True(t, user.PasswordChangedAt.Equal(f.clock.Now()))

	_, err = f.svc.Login(ctx, "a@x.com", "secret9")
	assert.NoError(t, err)
}

func TestResetPassword_TokenEmailMismatch(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.addUser(t, "a@x.com", "secret1", model.RoleUser)
	f.addUser(t, "b@x.com", "secret1", model.RoleUser)
	hashBefore := f.passwordHash(t, "a@x.com")

	tokenForB := resetTokenFor(t, f, "b@x.com")

	err := f.svc.ResetPassword(ctx, "a@x.com", "hijacked", tokenForB)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Equal(t, hashBefore, f.passwordHash(t, "a@x.com"))
}

func TestResetPassword_InvalidTokens(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.addUser(t, "a@x.com", "secret1", model.RoleUser)

	pair, err := f.svc.Login(ctx, "a@x.com", "secret1")
	require.NoError(t, err)
	assert.ErrorIs(t, f.svc.ResetPassword(ctx, "a@x.com", "secret2", pair.RefreshToken), ErrInvalidToken)
	assert.ErrorIs(t, f.svc.ResetPassword(ctx, "a@x.com", "secret2", ""), ErrInvalidToken)

	resetToken := resetTokenFor(t, f, "a@x.com")
	f.clock.Advance(10*time.Minute + time.Second)
	assert.ErrorIs(t, f.svc.ResetPassword(ctx, "a@x.com", "secret2", resetToken), ErrInvalidToken)

	assert.ErrorIs(t, f.svc.ResetPassword(ctx, "ghost@x.com", "secret2", resetToken), ErrUserNotFound)
}

func TestResetPassword_RoleChangedSinceIssue(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.addUser(t, "a@x.com", "secret1", model.RoleUser)
	hashBefore := f.passwordHash(t, "a@x.com")

	staleRole, err := token.NewCodec(token.WithClock(f.clock.Now)).Issue(token.Claims{Email: "a@x.com", Role: "admin"}, []byte(testAccessSecret), ResetTokenTTL)
	require.NoError(t, err)

	err = f.svc.ResetPassword(ctx, "a@x.com", "secret2", staleRole)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Equal(t, hashBefore, f.passwordHash(t, "a@x.com"))
}

// Reset tokens carry no consumption marker: a token issued before an
// unrelated password change still verifies and can be used again.
func TestResetPassword_TokenIsNotSingleUse(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.addUser(t, "a@x.com", "secret1", model.RoleUser)
	resetToken := resetTokenFor(t, f, "a@x.com")

	f.clock.Advance(time.Minute)
	require.NoError(t, f.svc.ChangePassword(ctx, model.Identity{Email: "a@x.com", Role: model.RoleUser}, "secret1", "secret2"))

	f.clock.Advance(time.Minute)
	assert.NoError(t, f.svc.ResetPassword(ctx, "a@x.com", "secret3", resetToken))
	f.clock.Advance(time.Minute)
	assert.NoError(t, f.svc.ResetPassword(ctx, "a@x.com", "secret4", resetToken))
}

func TestEnsureAdmin(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	assert.ErrorIs(t, f.svc.EnsureAdmin(ctx, "", "pw"), ErrMisconfigured)

	require.NoError(t, f.svc.EnsureAdmin(ctx, "root@x.com", "rootpass"))
	require.NoError(t, f.svc.EnsureAdmin(ctx, "root@x.com", "other-password"))

	pair, err := f.svc.Login(ctx, "root@x.com", "rootpass")
	require.NoError(t, err)
	identity, err := NewGate(f.svc, model.RoleAdmin).Check(bearerRequest(pair.AccessToken))
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, identity.Role)
}

func TestExtractToken(t *testing.T) {
	assert.Equal(t, "abc", ExtractToken("Bearer abc"))
	assert.Equal(t, "abc", ExtractToken("bearer  abc "))
	assert.Equal(t, "abc", ExtractToken("abc"))
	assert.Equal(t, "", ExtractToken("Bearer "))
	assert.Equal(t, "", ExtractToken("Bearer a b"))
	assert.Equal(t, "", ExtractToken(""))
}

func TestIssuedBeforePasswordChange(t *testing.T) {
	iat := time.Unix(1_700_000_000, 0)
	before := iat.Add(-time.Second)
	sameSecond := iat.Add(500 * time.Millisecond)
	after := iat.Add(time.Second)

	assert.False(t, issuedBeforePasswordChange(&model.User{}, iat))
	assert.False(t, issuedBeforePasswordChange(&model.User{PasswordChangedAt: &before}, iat))
	assert.False(t, issuedBeforePasswordChange(&model.User{PasswordChangedAt: &iat}, iat))
	assert.True(t, issuedBeforePasswordChange(&model.User{PasswordChangedAt: &sameSecond}, iat))
	assert.True(t, issuedBeforePasswordChange(&model.User{PasswordChangedAt: &sameSecond}, sameSecond))
	assert.True(t, issuedBeforePasswordChange(&model.User{PasswordChangedAt: &after}, iat))
}
