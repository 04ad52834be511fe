package services

import (
	"MallBackend/models"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func userFixture() *models.User {
	return &models.User{
		Model:    gorm.Model{ID: 1},
		Username: "bob",
		Email:    "bob@example.com",
		IsActive: true,
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("super-secret-1")
	require.NoError(t, err)

	assert.True(t, CheckPasswordHash("super-secret-1", hash))
	assert.False(t, CheckPasswordHash("wrong-password", hash))
}

func TestValidateEmail(t *testing.T) {
	assert.True(t, ValidateEmail("user@example.com"))
	assert.False(t, ValidateEmail("not-an-email"))
	assert.False(t, ValidateEmail("user@"))
}

func TestRegisterUserPasswordTooShort(t *testing.T) {
	db, _ := newMockDB(t)

	_, _, err := RegisterUser(db, "secret", 24, RegisterInput{
		Username:        "newuser",
		Email:           "new@example.com",
		Password:        "short",
		PasswordConfirm: "short",
	})

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Errors, "password")
}

func TestRegisterUserPasswordMismatch(t *testing.T) {
	db, _ := newMockDB(t)

	_, _, err := RegisterUser(db, "secret", 24, RegisterInput{
		Username:        "newuser",
		Email:           "new@example.com",
		Password:        "password123",
		PasswordConfirm: "password456",
	})

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Errors, "password_confirm")
}

func TestRegisterUserDuplicateUsername(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("SELECT (.+) FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username"}).AddRow(1, "taken"))
	mock.ExpectQuery("SELECT (.+) FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, _, err := RegisterUser(db, "secret", 24, RegisterInput{
		Username:        "taken",
		Email:           "new@example.com",
		Password:        "password123",
		PasswordConfirm: "password123",
	})

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Errors, "username")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterUserSuccessIssuesToken(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("SELECT (.+) FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery("SELECT (.+) FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec("INSERT INTO `users`").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO `login_tokens`").WillReturnResult(sqlmock.NewResult(1, 1))

	user, tokenString, err := RegisterUser(db, "secret", 24, RegisterInput{
		Username:        "newuser",
		Email:           "new@example.com",
		Password:        "password123",
		PasswordConfirm: "password123",
	})

	require.NoError(t, err)
	assert.Equal(t, "newuser", user.Username)
	assert.True(t, user.IsActive)
	assert.NotEmpty(t, tokenString)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginUserWrongPassword(t *testing.T) {
	db, mock := newMockDB(t)
	hash, err := HashPassword("correct-password")
	require.NoError(t, err)

	mock.ExpectQuery("SELECT (.+) FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password", "is_active"}).
			AddRow(1, "bob", hash, true))

	_, tokenString, err := LoginUser(db, "secret", 24, "bob", "wrong-password")

	var businessErr *BusinessError
	require.ErrorAs(t, err, &businessErr)
	assert.Equal(t, "使用者名稱或密碼錯誤", businessErr.Message)
	assert.Empty(t, tokenString)
}

func TestLoginUserUnknownUsername(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("SELECT (.+) FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, tokenString, err := LoginUser(db, "secret", 24, "ghost", "whatever")

	var businessErr *BusinessError
	require.ErrorAs(t, err, &businessErr)
	assert.Equal(t, "使用者名稱或密碼錯誤", businessErr.Message)
	assert.Empty(t, tokenString)
}

func TestLoginUserInactiveAccount(t *testing.T) {
	db, mock := newMockDB(t)
	hash, err := HashPassword("correct-password")
	require.NoError(t, err)

	mock.ExpectQuery("SELECT (.+) FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password", "is_active"}).
			AddRow(1, "bob", hash, false))

	_, tokenString, err := LoginUser(db, "secret", 24, "bob", "correct-password")

	var businessErr *BusinessError
	require.ErrorAs(t, err, &businessErr)
	assert.Equal(t, "使用者帳戶已被停用", businessErr.Message)
	assert.Empty(t, tokenString)
}

func TestLoginUserReusesExistingToken(t *testing.T) {
	db, mock := newMockDB(t)
	hash, err := HashPassword("correct-password")
	require.NoError(t, err)

	mock.ExpectQuery("SELECT (.+) FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password", "is_active"}).
			AddRow(1, "bob", hash, true))
	mock.ExpectQuery("SELECT (.+) FROM `login_tokens`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "token", "expiration_time", "user_id"}).
			AddRow(1, "existing-token", time.Now().Add(time.Hour), 1))

	user, tokenString, err := LoginUser(db, "secret", 24, "bob", "correct-password")

	require.NoError(t, err)
	assert.Equal(t, "bob", user.Username)
	assert.Equal(t, "existing-token", tokenString)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginUserReplacesExpiredToken(t *testing.T) {
	db, mock := newMockDB(t)
	hash, err := HashPassword("correct-password")
	require.NoError(t, err)

	mock.ExpectQuery("SELECT (.+) FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password", "is_active"}).
			AddRow(1, "bob", hash, true))
	mock.ExpectQuery("SELECT (.+) FROM `login_tokens`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "token", "expiration_time", "user_id"}).
			AddRow(1, "expired-token", time.Now().Add(-time.Hour), 1))
	mock.ExpectExec("DELETE FROM `login_tokens`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `login_tokens`").WillReturnResult(sqlmock.NewResult(2, 1))

	_, tokenString, err := LoginUser(db, "secret", 24, "bob", "correct-password")

	require.NoError(t, err)
	assert.NotEmpty(t, tokenString)
	assert.NotEqual(t, "expired-token", tokenString)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogoutUserMissingTokenSucceeds(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec("DELETE FROM `login_tokens`").WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, LogoutUser(db, "already-gone"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateUserProfilePartial(t *testing.T) {
	db, mock := newMockDB(t)
	user := userFixture()

	mock.ExpectExec("UPDATE `users` SET").WillReturnResult(sqlmock.NewResult(0, 1))

	firstName := "小明"
	err := UpdateUserProfile(db, user, UpdateProfileInput{FirstName: &firstName})

	require.NoError(t, err)
	assert.Equal(t, "小明", user.FirstName)
	assert.Equal(t, "bob@example.com", user.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateUserProfileDuplicateEmail(t *testing.T) {
	db, mock := newMockDB(t)
	user := userFixture()

	mock.ExpectQuery("SELECT (.+) FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}).AddRow(2, "other@example.com"))

	newEmail := "other@example.com"
	err := UpdateUserProfile(db, user, UpdateProfileInput{Email: &newEmail})

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Errors, "email")
	assert.Equal(t, "bob@example.com", user.Email)
}
