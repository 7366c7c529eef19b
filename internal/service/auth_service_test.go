package service_test

import (
	"context"
	"testing"

	"github.com/dom/notes-api/internal/domain"
	"github.com/dom/notes-api/internal/repository"
	"github.com/dom/notes-api/internal/service"
	"github.com/dom/notes-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(t *testing.T) (*service.Services, *repository.Repositories) {
	t.Helper()
	repos := testutil.NewMemoryRepositories()
	return testutil.NewTestServices(t, repos, nil), repos
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		input   service.RegisterInput
		setup   func(t *testing.T, repos *repository.Repositories)
		wantErr error
	}{
		{
			name: "successful registration",
			input: service.RegisterInput{
				Username:  "newuser",
				Email:     "newuser@example.com",
				Password:  "password123",
				OtherInfo: "bio",
			},
		},
		{
			name: "duplicate username",
			input: service.RegisterInput{
				Username: "existinguser",
				Email:    "fresh@example.com",
				Password: "password123",
			},
			setup: func(t *testing.T, repos *repository.Repositories) {
				testutil.NewUserBuilder().WithUsername("existinguser").Build(t, repos)
			},
			wantErr: service.ErrUsernameTaken,
		},
		{
			name: "duplicate email",
			input: service.RegisterInput{
				Username: "fresh",
				Email:    "taken@example.com",
				Password: "password123",
			},
			setup: func(t *testing.T, repos *repository.Repositories) {
				testutil.NewUserBuilder().WithEmail("taken@example.com").Build(t, repos)
			},
			wantErr: service.ErrEmailTaken,
		},
		{
			name:    "blank username",
			input:   service.RegisterInput{Username: "  ", Email: "a@example.com", Password: "pw"},
			wantErr: domain.ErrUsernameRequired,
		},
		{
			name:    "invalid email",
			input:   service.RegisterInput{Username: "u", Email: "Name <a@example.com>", Password: "pw"},
			wantErr: domain.ErrInvalidEmail,
		},
		{
			name:    "missing password",
			input:   service.RegisterInput{Username: "u", Email: "a@example.com"},
			wantErr: domain.ErrPasswordRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			services, repos := newAuthService(t)
			if tt.setup != nil {
				tt.setup(t, repos)
			}

			result, err := services.Auth.Register(ctx, tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.input.Username, result.User.Username)
			assert.NotEqual(t, tt.input.Password, result.User.PasswordHash)
			assert.NotEmpty(t, result.AccessToken)

			// the token resolves to the new user
			identity, err := services.Sessions.Resolve(ctx, result.AccessToken)
			require.NoError(t, err)
			assert.Equal(t, result.User.ID, identity.UserID)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	services, repos := newAuthService(t)
	ctx := context.Background()

	user, password := testutil.NewUserBuilder().WithUsername("loginuser").Build(t, repos)

	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{"valid credentials", "loginuser", password, nil},
		{"wrong password", "loginuser", "wrong", service.ErrInvalidCredentials},
		{"unknown user", "nobody", password, service.ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := services.Auth.Login(ctx, service.LoginInput{Username: tt.username, Password: tt.password})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, user.ID, result.User.ID)
			assert.NotEmpty(t, result.AccessToken)
		})
	}
}

func TestAuthService_LoginAfterLogout(t *testing.T) {
	services, repos := newAuthService(t)
	ctx := context.Background()

	user, password := testutil.NewUserBuilder().WithUsername("relogin").Build(t, repos)
	input := service.LoginInput{Username: "relogin", Password: password}

	first, err := services.Auth.Login(ctx, input)
	require.NoError(t, err)
	require.NoError(t, services.Auth.Logout(ctx, first.AccessToken))

	second, err := services.Auth.Login(ctx, input)
	require.NoError(t, err)
	assert.NotEqual(t, first.AccessToken, second.AccessToken)

	identity, err := services.Sessions.Resolve(ctx, second.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, identity.UserID)
}

func TestAuthService_LoginTrimsUsername(t *testing.T) {
	services, _ := newAuthService(t)
	ctx := context.Background()

	registered, err := services.Auth.Register(ctx, service.RegisterInput{
		Username: "alice ",
		Email:    "alice@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", registered.User.Username)

	for _, username := range []string{"alice ", "alice", "  alice"} {
		result, err := services.Auth.Login(ctx, service.LoginInput{Username: username, Password: "password123"})
		require.NoError(t, err, username)
		assert.Equal(t, registered.User.ID, result.User.ID)
	}
}

func TestAuthService_LoginStoreFailure(t *testing.T) {
	services, repos := newAuthService(t)

	repos.User.(*testutil.MemoryUserRepository).Err = domain.ErrStoreUnavailable

	_, err := services.Auth.Login(context.Background(), service.LoginInput{Username: "a", Password: "b"})
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestAuthService_UpdateProfile(t *testing.T) {
	services, repos := newAuthService(t)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().WithOtherInfo("old").Build(t, repos)
	other, _ := testutil.NewUserBuilder().Build(t, repos)
	identity := domain.IdentityOf(user)

	newInfo := "new"
	tests := []struct {
		name          string
		input         service.UpdateProfileInput
		wantErr       error
		wantOtherInfo string
	}{
		{"email only", service.UpdateProfileInput{Email: "changed@example.com"}, nil, "old"},
		{"email and info", service.UpdateProfileInput{Email: "changed@example.com", OtherInfo: &newInfo}, nil, "new"},
		{"keep own email", service.UpdateProfileInput{Email: "changed@example.com"}, nil, "new"},
		{"email of another user", service.UpdateProfileInput{Email: other.Email}, service.ErrEmailTaken, ""},
		{"missing email", service.UpdateProfileInput{}, domain.ErrEmailRequired, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			updated, err := services.Auth.UpdateProfile(ctx, identity, tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.input.Email, updated.Email)
			assert.Equal(t, tt.wantOtherInfo, updated.OtherInfo)
			assert.Equal(t, user.Username, updated.Username)
		})
	}
}

func TestAuthService_GetProfileMissingUser(t *testing.T) {
	services, _ := newAuthService(t)

	_, err := services.Auth.GetProfile(context.Background(), &domain.Identity{Username: "gone"})
	assert.ErrorIs(t, err, service.ErrUserNotFound)
}
