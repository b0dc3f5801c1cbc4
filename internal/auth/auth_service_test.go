package auth_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"geopunch/internal/auth"
	autherrors "geopunch/internal/auth/errors"
	"geopunch/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

type fakeRepo struct {
	users map[string]*auth.User
	err   error
}

func (f *fakeRepo) Create(ctx context.Context, user *auth.User) error {
	if f.err != nil {
		return f.err
	}
	f.users[user.Email] = user
	return nil
}

func (f *fakeRepo) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	if u, ok := f.users[email]; ok {
		return u, nil
	}
	return nil, errors.New("record not found")
}

func (f *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (*auth.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, errors.New("record not found")
}

type fakeRBAC struct {
	loaded []string
}

func (f *fakeRBAC) LoadCompanyPolicy(companyID string) error {
	f.loaded = append(f.loaded, companyID)
	return nil
}

func (f *fakeRBAC) Enforce(req domain.EnforceRequest) (bool, error) { return true, nil }

func seedUser(t *testing.T, repo *fakeRepo, password string) *auth.User {
	t.Helper()
	pw, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	assert.NoError(t, err)

	u := &auth.User{
		ID:         uuid.New(),
		CompanyID:  uuid.New(),
		EmployeeID: uuid.New(),
		Email:      "admin@example.com",
		Name:       "Admin",
		Password:   string(pw),
		Role:       "ADMIN",
	}
	repo.users[u.Email] = u
	return u
}

func TestService_Login(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	ctx := context.Background()

	repo := &fakeRepo{users: map[string]*auth.User{}}
	rbacSvc := &fakeRBAC{}
	user := seedUser(t, repo, "password123")

	service := auth.NewService(repo, rbacSvc)

	t.Run("success", func(t *testing.T) {
		accessToken, refreshToken, resp, err := service.Login(ctx, user.Email, "password123")
		assert.NoError(t, err)
		assert.NotEmpty(t, accessToken)
		assert.NotEmpty(t, refreshToken)
		assert.Equal(t, user.Email, resp.Email)
		assert.Equal(t, user.CompanyID.String(), resp.CompanyID)
		assert.Contains(t, rbacSvc.loaded, user.CompanyID.String())

		// The middleware reads these claims; all four must be present.
		token, err := jwt.Parse(accessToken, func(token *jwt.Token) (interface{}, error) {
			return []byte(os.Getenv("JWT_SECRET")), nil
		})
		assert.NoError(t, err)
		claims := token.Claims.(jwt.MapClaims)
		assert.Equal(t, user.ID.String(), claims["user_id"])
		assert.Equal(t, user.EmployeeID.String(), claims["employee_id"])
		assert.Equal(t, user.CompanyID.String(), claims["company_id"])
		assert.Equal(t, "ADMIN", claims["role"])
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, _, err := service.Login(ctx, user.Email, "wrongpass")
		assert.ErrorIs(t, err, autherrors.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, _, _, err := service.Login(ctx, "nobody@example.com", "password123")
		assert.ErrorIs(t, err, autherrors.ErrInvalidCredentials)
	})
}

func TestService_RefreshToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	ctx := context.Background()

	repo := &fakeRepo{users: map[string]*auth.User{}}
	user := seedUser(t, repo, "password123")
	service := auth.NewService(repo, &fakeRBAC{})

	_, refreshToken, _, err := service.Login(ctx, user.Email, "password123")
	assert.NoError(t, err)

	newAccess, newRefresh, resp, err := service.RefreshToken(ctx, refreshToken)
	assert.NoError(t, err)
	assert.NotEmpty(t, newAccess)
	assert.NotEmpty(t, newRefresh)
	assert.Equal(t, user.Email, resp.Email)

	_, _, _, err = service.RefreshToken(ctx, "not-a-token")
	assert.ErrorIs(t, err, autherrors.ErrInvalidRefreshToken)
}

func TestService_Register(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		repo := &fakeRepo{users: map[string]*auth.User{}}
		rbacSvc := &fakeRBAC{}
		service := auth.NewService(repo, rbacSvc)

		req := auth.RegisterRequest{
			CompanyID:  uuid.New().String(),
			EmployeeID: uuid.New().String(),
			Email:      "user@example.com",
			Name:       "John Doe",
			Password:   "password123",
		}

		resp, err := service.Register(ctx, req)
		assert.NoError(t, err)
		assert.Equal(t, req.Email, resp.Email)
		assert.Contains(t, rbacSvc.loaded, req.CompanyID)

		stored := repo.users[req.Email]
		assert.NotNil(t, stored)
		assert.NotEqual(t, "password123", stored.Password)
	})

	t.Run("duplicate email", func(t *testing.T) {
		repo := &fakeRepo{users: map[string]*auth.User{}, err: errors.New("duplicate key value")}
		service := auth.NewService(repo, &fakeRBAC{})

		_, err := service.Register(ctx, auth.RegisterRequest{
			CompanyID:  uuid.New().String(),
			EmployeeID: uuid.New().String(),
			Email:      "dup@example.com",
			Name:       "Dup",
			Password:   "password123",
		})
		assert.ErrorIs(t, err, autherrors.ErrEmailAlreadyRegistered)
	})
}

func TestService_GetMe(t *testing.T) {
	repo := &fakeRepo{users: map[string]*auth.User{}}
	user := seedUser(t, repo, "password123")
	service := auth.NewService(repo, &fakeRBAC{})

	resp, err := service.GetMe(context.Background(), user.ID.String())
	assert.NoError(t, err)
	assert.Equal(t, user.Email, resp.Email)

	_, err = service.GetMe(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, autherrors.ErrInvalidUserID)
}
