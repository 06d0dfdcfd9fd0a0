package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskpilot/core/internal/domain/entities"
	"github.com/taskpilot/core/internal/infrastructure/config"
	"github.com/taskpilot/core/internal/infrastructure/logger"
	"github.com/taskpilot/core/internal/ports"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:    "test-secret-key",
		ExpiresIn: 24 * time.Hour,
		Issuer:    "taskpilot-test",
	}
}

func newTestAuthService(users *memUserRepo, otp ports.OTPService, jwtCfg config.JWTConfig) *AuthService {
	return NewAuthService(users, otp, jwtCfg, bcrypt.MinCost, logger.NewNop())
}

func registerReq(email string) ports.RegisterRequest {
	return ports.RegisterRequest{
		Email:    email,
		FullName: "Ada Lovelace",
		Password: "correct-horse",
		OTP:      "123456",
	}
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	users := newMemUserRepo()
	svc := newTestAuthService(users, &stubOTPService{}, testJWTConfig())
	ctx := context.Background()

	user, err := svc.Register(ctx, registerReq("a@x.com"))
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", user.Email)
	assert.Equal(t, "Ada Lovelace", user.FullName)
	assert.Empty(t, user.PasswordHash)

	resp, err := svc.Login(ctx, ports.LoginRequest{Email: "a@x.com", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Empty(t, resp.User.PasswordHash)
}

func TestAuthService_RegisterRejectsBadOTP(t *testing.T) {
	users := newMemUserRepo()

	for _, otpErr := range []error{entities.ErrInvalidOTP, entities.ErrNoActiveOTP} {
		svc := newTestAuthService(users, &stubOTPService{verifyErr: otpErr}, testJWTConfig())

		_, err := svc.Register(context.Background(), registerReq("a@x.com"))
		assert.ErrorIs(t, err, otpErr)
	}

	// Nothing was persisted along the way.
	_, err := users.GetByEmail(context.Background(), "a@x.com")
	assert.ErrorIs(t, err, entities.ErrUserNotFound)
}

func TestAuthService_DuplicateRegistration(t *testing.T) {
	users := newMemUserRepo()
	svc := newTestAuthService(users, &stubOTPService{}, testJWTConfig())
	ctx := context.Background()

	_, err := svc.Register(ctx, registerReq("a@x.com"))
	require.NoError(t, err)

	// A correct OTP does not rescue a duplicate address.
	_, err = svc.Register(ctx, registerReq("a@x.com"))
	assert.ErrorIs(t, err, entities.ErrDuplicateEmail)
}

func TestAuthService_LoginInvalidCredentials(t *testing.T) {
	users := newMemUserRepo()
	svc := newTestAuthService(users, &stubOTPService{}, testJWTConfig())
	ctx := context.Background()

	_, err := svc.Register(ctx, registerReq("a@x.com"))
	require.NoError(t, err)

	// Unknown address and wrong password are indistinguishable to callers.
	_, err = svc.Login(ctx, ports.LoginRequest{Email: "ghost@x.com", Password: "whatever"})
	assert.ErrorIs(t, err, entities.ErrInvalidCredentials)

	_, err = svc.Login(ctx, ports.LoginRequest{Email: "a@x.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, entities.ErrInvalidCredentials)
}

func TestAuthService_ValidateToken(t *testing.T) {
	users := newMemUserRepo()
	svc := newTestAuthService(users, &stubOTPService{}, testJWTConfig())
	ctx := context.Background()

	user, err := svc.Register(ctx, registerReq("a@x.com"))
	require.NoError(t, err)

	resp, err := svc.Login(ctx, ports.LoginRequest{Email: "a@x.com", Password: "correct-horse"})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.UserID)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, "Ada Lovelace", claims.FullName)
}

func TestAuthService_ValidateTokenRejectsTampering(t *testing.T) {
	users := newMemUserRepo()
	svc := newTestAuthService(users, &stubOTPService{}, testJWTConfig())
	ctx := context.Background()

	_, err := svc.Register(ctx, registerReq("a@x.com"))
	require.NoError(t, err)

	resp, err := svc.Login(ctx, ports.LoginRequest{Email: "a@x.com", Password: "correct-horse"})
	require.NoError(t, err)

	parts := strings.Split(resp.AccessToken, ".")
	require.Len(t, parts, 3)

	// Swap the payload for a forged one, keeping the original signature.
	forged := parts[0] + "." + parts[1][:len(parts[1])-2] + "xx" + "." + parts[2]
	_, err = svc.ValidateToken(forged)
	assert.ErrorIs(t, err, entities.ErrInvalidToken)

	// Garbage and empty tokens fail the same way.
	_, err = svc.ValidateToken("not.a.jwt")
	assert.ErrorIs(t, err, entities.ErrInvalidToken)

	_, err = svc.ValidateToken("")
	assert.ErrorIs(t, err, entities.ErrInvalidToken)
}

func TestAuthService_ValidateTokenRejectsWrongKeyAndExpiry(t *testing.T) {
	users := newMemUserRepo()
	ctx := context.Background()

	issuer := newTestAuthService(users, &stubOTPService{}, testJWTConfig())
	_, err := issuer.Register(ctx, registerReq("a@x.com"))
	require.NoError(t, err)

	resp, err := issuer.Login(ctx, ports.LoginRequest{Email: "a@x.com", Password: "correct-horse"})
	require.NoError(t, err)

	otherKey := testJWTConfig()
	otherKey.Secret = "a-different-secret"
	verifier := newTestAuthService(users, &stubOTPService{}, otherKey)

	_, err = verifier.ValidateToken(resp.AccessToken)
	assert.ErrorIs(t, err, entities.ErrInvalidToken)

	// Tokens signed with a negative lifetime are already expired.
	expiredCfg := testJWTConfig()
	expiredCfg.ExpiresIn = -time.Minute
	expiredIssuer := newTestAuthService(users, &stubOTPService{}, expiredCfg)

	expiredResp, err := expiredIssuer.Login(ctx, ports.LoginRequest{Email: "a@x.com", Password: "correct-horse"})
	require.NoError(t, err)

	_, err = expiredIssuer.ValidateToken(expiredResp.AccessToken)
	assert.ErrorIs(t, err, entities.ErrInvalidToken)
}

func TestAuthService_ListUsersStripsHashes(t *testing.T) {
	users := newMemUserRepo()
	svc := newTestAuthService(users, &stubOTPService{}, testJWTConfig())
	ctx := context.Background()

	_, err := svc.Register(ctx, registerReq("a@x.com"))
	require.NoError(t, err)

	listed, err := svc.ListUsers(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "a@x.com", listed[0].Email)
	assert.Empty(t, listed[0].PasswordHash)
}

// Full flow: issue OTP, register with the delivered code, log in, validate
// the session, then exercise a protected task operation as that subject.
func TestAuthFlow_EndToEnd(t *testing.T) {
	ctx := context.Background()
	nop := logger.NewNop()

	otpRepo := newMemOTPRepo()
	mailer := newFakeMailer()
	otpSvc := newTestOTPService(otpRepo, mailer, testOTPConfig())

	users := newMemUserRepo()
	authSvc := NewAuthService(users, otpSvc, testJWTConfig(), bcrypt.MinCost, nop)

	taskRepo := newMemTaskRepo()
	taskSvc := NewTaskService(taskRepo, nop)

	require.NoError(t, otpSvc.Issue(ctx, "a@x.com"))
	code := codeFromMail(t, mailer.lastSent())

	_, err := authSvc.Register(ctx, ports.RegisterRequest{
		Email:    "a@x.com",
		FullName: "Ada Lovelace",
		Password: "correct-horse",
		OTP:      code,
	})
	require.NoError(t, err)

	resp, err := authSvc.Login(ctx, ports.LoginRequest{Email: "a@x.com", Password: "correct-horse"})
	require.NoError(t, err)

	claims, err := authSvc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)

	task, err := taskSvc.CreateTask(ctx, claims.Email, ports.CreateTaskRequest{
		Title:    "Ship the release",
		Assignee: "b@x.com",
		Priority: entities.PriorityHigh,
		Deadline: time.Now().Add(48 * time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", task.Assignor)

	// Wrong password still fails after everything above succeeded.
	_, err = authSvc.Login(ctx, ports.LoginRequest{Email: "a@x.com", Password: "nope"})
	assert.ErrorIs(t, err, entities.ErrInvalidCredentials)
}
