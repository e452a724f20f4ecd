package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"aichat-backend/internal/model"
	"aichat-backend/internal/pkg/jwtutil"
	"aichat-backend/internal/repository"
	"aichat-backend/mocks"
)

const testSecret = "unit-secret"

func newAuthSvc(t *testing.T) (*AuthService, *mocks.MockUserStore, *mocks.MockDenylist) {
	t.Helper()
	ctrl := gomock.NewController(t)
	users := mocks.NewMockUserStore(ctrl)
	deny := mocks.NewMockDenylist(ctrl)
	return NewAuthService(users, deny, testSecret, time.Hour), users, deny
}

func validRegister() RegisterInput {
	age := 30
	return RegisterInput{
		FirstName: "Alice",
		LastName:  "Smith",
		EmailID:   " Alice@Example.com ",
		Password:  "Str0ng!pass",
		Age:       &age,
	}
}

func storedUser(t *testing.T, password string) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &model.User{ID: "u1", FirstName: "Alice", EmailID: "alice@example.com", PasswordHash: string(hash)}
}

func TestRegister_OK(t *testing.T) {
	t.Parallel()
	svc, users, _ := newAuthSvc(t)
	ctx := context.Background()

	users.EXPECT().ExistsByEmail(gomock.Any(), "alice@example.com").Return(false, nil)
	users.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, u *model.User) error {
		require.Equal(t, "alice@example.com", u.EmailID)
		require.NotEqual(t, "Str0ng!pass", u.PasswordHash)
		require.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("Str0ng!pass")))
		u.ID = "u1"
		return nil
	})

	res, err := svc.Register(ctx, validRegister())
	require.NoError(t, err)
	require.Equal(t, "u1", res.User.ID)
	require.WithinDuration(t, time.Now().Add(time.Hour), res.ExpiresAt, 2*time.Second)

	claims, err := jwtutil.ParseToken(testSecret, res.Token)
	require.NoError(t, err)
	require.Equal(t, "u1", claims.UserID)
	require.Equal(t, "alice@example.com", claims.EmailID)
}

func TestRegister_Validation(t *testing.T) {
	t.Parallel()

	tooYoung, tooOld := 5, 81
	cases := []struct {
		name   string
		mutate func(*RegisterInput)
		msg    string
	}{
		{"missing first name", func(in *RegisterInput) { in.FirstName = " " }, "firstName is required"},
		{"short first name", func(in *RegisterInput) { in.FirstName = "Al" }, "firstName must be 3 to 20 characters"},
		{"long last name", func(in *RegisterInput) { in.LastName = "abcdefghijklmnopqrstu" }, "lastName must be at most 20 characters"},
		{"bad email", func(in *RegisterInput) { in.EmailID = "not-an-email" }, "Email is not valid"},
		{"weak password", func(in *RegisterInput) { in.Password = "password1" }, "Password is not strong enough"},
		{"missing password", func(in *RegisterInput) { in.Password = "" }, "password is required"},
		{"password over bcrypt limit", func(in *RegisterInput) { in.Password = "Str0ng!" + strings.Repeat("a", 66) }, "Password is too long"},
		{"too young", func(in *RegisterInput) { in.Age = &tooYoung }, "age must be between 6 and 80"},
		{"too old", func(in *RegisterInput) { in.Age = &tooOld }, "age must be between 6 and 80"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			svc, _, _ := newAuthSvc(t)

			in := validRegister()
			tc.mutate(&in)
			_, err := svc.Register(context.Background(), in)
			require.ErrorIs(t, err, ErrValidation)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			require.Equal(t, tc.msg, verr.Message)
		})
	}
}

func TestRegister_OptionalFieldsMayBeOmitted(t *testing.T) {
	t.Parallel()
	svc, users, _ := newAuthSvc(t)

	users.EXPECT().ExistsByEmail(gomock.Any(), "bob@example.com").Return(false, nil)
	users.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

	_, err := svc.Register(context.Background(), RegisterInput{FirstName: "Bob", EmailID: "bob@example.com", Password: "Str0ng!pass"})
	require.NoError(t, err)
}

func TestRegister_Conflict(t *testing.T) {
	t.Parallel()

	t.Run("exists check", func(t *testing.T) {
		svc, users, _ := newAuthSvc(t)
		users.EXPECT().ExistsByEmail(gomock.Any(), "alice@example.com").Return(true, nil)

		_, err := svc.Register(context.Background(), validRegister())
		require.ErrorIs(t, err, ErrConflict)
	})

	t.Run("unique index race", func(t *testing.T) {
		svc, users, _ := newAuthSvc(t)
		users.EXPECT().ExistsByEmail(gomock.Any(), gomock.Any()).Return(false, nil)
		users.EXPECT().Create(gomock.Any(), gomock.Any()).Return(repository.ErrDuplicate)

		_, err := svc.Register(context.Background(), validRegister())
		require.ErrorIs(t, err, ErrConflict)
	})
}

func TestLogin(t *testing.T) {
	t.Parallel()

	t.Run("ok", func(t *testing.T) {
		svc, users, _ := newAuthSvc(t)
		users.EXPECT().GetByEmail(gomock.Any(), "alice@example.com").Return(storedUser(t, "Str0ng!pass"), nil)

		res, err := svc.Login(context.Background(), LoginInput{EmailID: "ALICE@example.com", Password: "Str0ng!pass"})
		require.NoError(t, err)
		require.NotEmpty(t, res.Token)
		require.Equal(t, "u1", res.User.ID)
	})

	t.Run("missing fields", func(t *testing.T) {
		svc, _, _ := newAuthSvc(t)
		_, err := svc.Login(context.Background(), LoginInput{EmailID: "alice@example.com"})
		require.ErrorIs(t, err, ErrValidation)
		require.EqualError(t, err, "Email and Password are required")
	})

	t.Run("unknown email and wrong password look the same", func(t *testing.T) {
		svc, users, _ := newAuthSvc(t)
		users.EXPECT().GetByEmail(gomock.Any(), "ghost@example.com").Return(nil, repository.ErrNotFound)
		users.EXPECT().GetByEmail(gomock.Any(), "alice@example.com").Return(storedUser(t, "Str0ng!pass"), nil)

		_, errUnknown := svc.Login(context.Background(), LoginInput{EmailID: "ghost@example.com", Password: "x"})
		_, errWrong := svc.Login(context.Background(), LoginInput{EmailID: "alice@example.com", Password: "wrong"})
		require.ErrorIs(t, errUnknown, ErrInvalidCredentials)
		require.ErrorIs(t, errWrong, ErrInvalidCredentials)
		require.Equal(t, errUnknown.Error(), errWrong.Error())
	})

	t.Run("store failure", func(t *testing.T) {
		svc, users, _ := newAuthSvc(t)
		users.EXPECT().GetByEmail(gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))

		_, err := svc.Login(context.Background(), LoginInput{EmailID: "alice@example.com", Password: "x"})
		require.Error(t, err)
		require.NotErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestLogout(t *testing.T) {
	t.Parallel()

	t.Run("blocks until token expiry", func(t *testing.T) {
		svc, _, deny := newAuthSvc(t)
		token, exp, err := jwtutil.GenerateToken(testSecret, time.Hour, "u1", "a@b.io")
		require.NoError(t, err)

		deny.EXPECT().Block(gomock.Any(), token, gomock.Any()).DoAndReturn(func(_ context.Context, _ string, at time.Time) error {
			require.Equal(t, exp.Unix(), at.Unix())
			return nil
		})
		require.NoError(t, svc.Logout(context.Background(), token))
	})

	t.Run("far future expiry is capped", func(t *testing.T) {
		svc, _, deny := newAuthSvc(t)
		forged, _, err := jwtutil.GenerateToken("attacker-secret", 24*365*time.Hour, "u1", "a@b.io")
		require.NoError(t, err)

		deny.EXPECT().Block(gomock.Any(), forged, gomock.Any()).DoAndReturn(func(_ context.Context, _ string, at time.Time) error {
			require.WithinDuration(t, time.Now().Add(time.Hour), at, 5*time.Second)
			return nil
		})
		require.NoError(t, svc.Logout(context.Background(), forged))
	})

	t.Run("missing token", func(t *testing.T) {
		svc, _, _ := newAuthSvc(t)
		err := svc.Logout(context.Background(), "")
		require.ErrorIs(t, err, ErrValidation)
		require.EqualError(t, err, "Token not found in cookies")
	})

	t.Run("undecodable token", func(t *testing.T) {
		svc, _, _ := newAuthSvc(t)
		err := svc.Logout(context.Background(), "garbage")
		require.ErrorIs(t, err, ErrValidation)
		require.EqualError(t, err, "Invalid token")
	})

	t.Run("denylist failure", func(t *testing.T) {
		svc, _, deny := newAuthSvc(t)
		token, _, err := jwtutil.GenerateToken(testSecret, time.Hour, "u1", "a@b.io")
		require.NoError(t, err)
		deny.EXPECT().Block(gomock.Any(), token, gomock.Any()).Return(errors.New("redis down"))

		err = svc.Logout(context.Background(), token)
		require.Error(t, err)
		require.NotErrorIs(t, err, ErrValidation)
	})
}

func TestValidateSession(t *testing.T) {
	t.Parallel()

	token, _, err := jwtutil.GenerateToken(testSecret, time.Hour, "u1", "alice@example.com")
	require.NoError(t, err)

	t.Run("ok", func(t *testing.T) {
		svc, users, deny := newAuthSvc(t)
		deny.EXPECT().IsBlocked(gomock.Any(), token).Return(false, nil)
		users.EXPECT().GetByID(gomock.Any(), "u1").Return(&model.User{ID: "u1"}, nil)

		u, err := svc.ValidateSession(context.Background(), token)
		require.NoError(t, err)
		require.Equal(t, "u1", u.ID)
	})

	t.Run("revoked", func(t *testing.T) {
		svc, _, deny := newAuthSvc(t)
		deny.EXPECT().IsBlocked(gomock.Any(), token).Return(true, nil)

		_, err := svc.ValidateSession(context.Background(), token)
		require.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("denylist failure fails closed", func(t *testing.T) {
		svc, _, deny := newAuthSvc(t)
		deny.EXPECT().IsBlocked(gomock.Any(), token).Return(false, errors.New("redis down"))

		_, err := svc.ValidateSession(context.Background(), token)
		require.Error(t, err)
		require.NotErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("bad signature", func(t *testing.T) {
		svc, _, _ := newAuthSvc(t)
		forged, _, err := jwtutil.GenerateToken("other-secret", time.Hour, "u1", "alice@example.com")
		require.NoError(t, err)

		_, err = svc.ValidateSession(context.Background(), forged)
		require.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("expired", func(t *testing.T) {
		svc, _, _ := newAuthSvc(t)
		expired, _, err := jwtutil.GenerateToken(testSecret, -time.Minute, "u1", "alice@example.com")
		require.NoError(t, err)

		_, err = svc.ValidateSession(context.Background(), expired)
		require.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("deleted user", func(t *testing.T) {
		svc, users, deny := newAuthSvc(t)
		deny.EXPECT().IsBlocked(gomock.Any(), token).Return(false, nil)
		users.EXPECT().GetByID(gomock.Any(), "u1").Return(nil, repository.ErrNotFound)

		_, err := svc.ValidateSession(context.Background(), token)
		require.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("empty", func(t *testing.T) {
		svc, _, _ := newAuthSvc(t)
		_, err := svc.ValidateSession(context.Background(), "")
		require.ErrorIs(t, err, ErrUnauthorized)
	})
}

func TestProfile(t *testing.T) {
	t.Parallel()

	svc, users, _ := newAuthSvc(t)
	users.EXPECT().GetByID(gomock.Any(), "u1").Return(&model.User{ID: "u1", FirstName: "Alice"}, nil)
	users.EXPECT().GetByID(gomock.Any(), "gone").Return(nil, repository.ErrNotFound)

	u, err := svc.Profile(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, "Alice", u.FirstName)

	_, err = svc.Profile(context.Background(), "gone")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRegister_PasswordAtBcryptLimit(t *testing.T) {
	t.Parallel()
	svc, users, _ := newAuthSvc(t)

	in := validRegister()
	in.Password = "Str0ng!" + strings.Repeat("a", maxPasswordBytes-7)
	users.EXPECT().ExistsByEmail(gomock.Any(), "alice@example.com").Return(false, nil)
	users.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, u *model.User) error {
		u.ID = "u1"
		return nil
	})

	res, err := svc.Register(context.Background(), in)
	require.NoError(t, err)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(res.User.PasswordHash), []byte(in.Password)))
}

func TestIsStrongPassword(t *testing.T) {
	require.True(t, isStrongPassword("Aa1!aaaa"))
	require.False(t, isStrongPassword("Aa1!aaa"))
	require.False(t, isStrongPassword("aa1!aaaa"))
	require.False(t, isStrongPassword("AA1!AAAA"))
	require.False(t, isStrongPassword("Aaa!aaaa"))
	require.False(t, isStrongPassword("Aa1aaaaa"))
}
