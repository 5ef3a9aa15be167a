package auth

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgAuth "github.com/tommiesfashion/storefront-backend/pkg/auth"
	"github.com/tommiesfashion/storefront-backend/pkg/auth/session"
	"github.com/tommiesfashion/storefront-backend/pkg/config"
	"github.com/tommiesfashion/storefront-backend/pkg/db/models"
	"github.com/tommiesfashion/storefront-backend/pkg/enums"
	pkgerrors "github.com/tommiesfashion/storefront-backend/pkg/errors"
	"github.com/tommiesfashion/storefront-backend/pkg/security"
)

var testJWTConfig = config.JWTConfig{
	Secret:            "test-secret-test-secret-test-secret",
	Issuer:            "storefront-test",
	ExpirationMinutes: 15,
}

var testPasswordConfig = config.PasswordConfig{
	ArgonMemoryKB:    16384,
	ArgonTime:        1,
	ArgonParallelism: 1,
}

type stubUserRepo struct {
	byEmail map[string]*models.User
	byID    map[uuid.UUID]*models.User
}

func newStubUserRepo(usersIn ...*models.User) *stubUserRepo {
	repo := &stubUserRepo{
		byEmail: map[string]*models.User{},
		byID:    map[uuid.UUID]*models.User{},
	}
	for _, u := range usersIn {
		repo.byEmail[u.Email] = u
		repo.byID[u.ID] = u
	}
	return repo
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if u, ok := r.byEmail[email]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if u, ok := r.byID[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type stubSessionManager struct {
	sessions map[string]string
	revoked  []string
}

func newStubSessionManager() *stubSessionManager {
	return &stubSessionManager{sessions: map[string]string{}}
}

func (m *stubSessionManager) Generate(_ context.Context, accessID string) (string, error) {
	token := "refresh-" + accessID
	m.sessions[accessID] = token
	return token, nil
}

func (m *stubSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	stored, ok := m.sessions[oldAccessID]
	if !ok || stored != provided {
		return "", "", session.ErrInvalidRefreshToken
	}
	delete(m.sessions, oldAccessID)
	newID := uuid.NewString()
	token, _ := m.Generate(ctx, newID)
	return newID, token, nil
}

func (m *stubSessionManager) Revoke(_ context.Context, accessID string) error {
	delete(m.sessions, accessID)
	m.revoked = append(m.revoked, accessID)
	return nil
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := security.HashPassword(password, testPasswordConfig)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}

func newTestService(t *testing.T, repo *stubUserRepo, sessions *stubSessionManager) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		SessionManager: sessions,
		JWTConfig:      testJWTConfig,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestLoginSucceeds(t *testing.T) {
	t.Parallel()

	user := &models.User{
		ID:           uuid.New(),
		FullName:     "Ada Obi",
		Email:        "ada@example.com",
		PasswordHash: mustHash(t, "correct horse"),
		Role:         enums.UserRoleCustomer,
	}
	sessions := newStubSessionManager()
	svc := newTestService(t, newStubUserRepo(user), sessions)

	resp, err := svc.Login(context.Background(), LoginRequest{Email: "  Ada@Example.com ", Password: "correct horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatal("expected both tokens to be issued")
	}
	if resp.User == nil || resp.User.Email != user.Email {
		t.Fatalf("unexpected user payload: %+v", resp.User)
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse minted token: %v", err)
	}
	if claims.UserID != user.ID {
		t.Fatalf("claims user id = %s, want %s", claims.UserID, user.ID)
	}
	if _, ok := sessions.sessions[claims.ID]; !ok {
		t.Fatal("expected refresh session stored under the token jti")
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	t.Parallel()

	user := &models.User{
		ID:           uuid.New(),
		Email:        "ada@example.com",
		PasswordHash: mustHash(t, "correct horse"),
		Role:         enums.UserRoleCustomer,
	}
	svc := newTestService(t, newStubUserRepo(user), newStubSessionManager())
	ctx := context.Background()

	_, unknownErr := svc.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "correct horse"})
	_, badPassErr := svc.Login(ctx, LoginRequest{Email: "ada@example.com", Password: "wrong"})

	for name, err := range map[string]error{"unknown email": unknownErr, "wrong password": badPassErr} {
		domainErr := pkgerrors.As(err)
		if domainErr == nil {
			t.Fatalf("%s: expected domain error, got %v", name, err)
		}
		if domainErr.Code() != pkgerrors.CodeUnauthorized {
			t.Fatalf("%s: code = %s, want unauthorized", name, domainErr.Code())
		}
		if domainErr.Message() != invalidCredentialsMessage {
			t.Fatalf("%s: message = %q, want %q", name, domainErr.Message(), invalidCredentialsMessage)
		}
	}
}

func TestAdminLoginRejectsCustomer(t *testing.T) {
	t.Parallel()

	user := &models.User{
		ID:           uuid.New(),
		Email:        "ada@example.com",
		PasswordHash: mustHash(t, "correct horse"),
		Role:         enums.UserRoleCustomer,
	}
	svc := newTestService(t, newStubUserRepo(user), newStubSessionManager())

	_, err := svc.AdminLogin(context.Background(), LoginRequest{Email: "ada@example.com", Password: "correct horse"})
	domainErr := pkgerrors.As(err)
	if domainErr == nil || domainErr.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if domainErr.Message() != invalidCredentialsMessage {
		t.Fatalf("message = %q, want the generic credential message", domainErr.Message())
	}
}

func TestRefreshRotatesSession(t *testing.T) {
	t.Parallel()

	user := &models.User{
		ID:           uuid.New(),
		Email:        "ada@example.com",
		PasswordHash: mustHash(t, "correct horse"),
		Role:         enums.UserRoleCustomer,
	}
	sessions := newStubSessionManager()
	svc := newTestService(t, newStubUserRepo(user), sessions)
	ctx := context.Background()

	login, err := svc.Login(ctx, LoginRequest{Email: "ada@example.com", Password: "correct horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	refreshed, err := svc.Refresh(ctx, RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if refreshed.RefreshToken == login.RefreshToken {
		t.Fatal("expected a rotated refresh token")
	}

	// The old pair is spent after rotation.
	if _, err := svc.Refresh(ctx, RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	}); err == nil {
		t.Fatal("expected replayed refresh to be rejected")
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	t.Parallel()

	sessions := newStubSessionManager()
	svc := newTestService(t, newStubUserRepo(), sessions)

	if err := svc.Logout(context.Background(), "access-id-1"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(sessions.revoked) != 1 || sessions.revoked[0] != "access-id-1" {
		t.Fatalf("revoked = %v, want [access-id-1]", sessions.revoked)
	}

	if err := svc.Logout(context.Background(), "  "); err == nil {
		t.Fatal("expected blank access id to be rejected")
	}
}
