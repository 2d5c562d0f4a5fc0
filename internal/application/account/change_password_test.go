package account

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookshop/internal/domain/user"
)

// ========================================
// 测试替身
// ========================================

type fakeTx struct {
	calls int
}

func (f *fakeTx) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

type fakeUserRepo struct {
	matched *user.User // FindByCredentials返回值，nil时返回ErrInvalidCredentials
	updated []updateCall
}

type updateCall struct {
	username    string
	email       string
	newPassword string
}

func (f *fakeUserRepo) Exists(ctx context.Context, username string) (bool, error) {
	panic("not used in this test")
}

func (f *fakeUserRepo) FindByCredentials(ctx context.Context, username, email, password string) (*user.User, error) {
	if f.matched == nil {
		return nil, user.ErrInvalidCredentials
	}
	if f.matched.Username != username || f.matched.Email != email || f.matched.Password != password {
		return nil, user.ErrInvalidCredentials
	}
	return f.matched, nil
}

func (f *fakeUserRepo) UpdatePassword(ctx context.Context, username, email, newPassword string) error {
	f.updated = append(f.updated, updateCall{username: username, email: email, newPassword: newPassword})
	return nil
}

// ========================================
// 测试用例
// ========================================

// TestChangePassword_Success 三字段全部匹配时更新密码
func TestChangePassword_Success(t *testing.T) {
	repo := &fakeUserRepo{matched: &user.User{Username: "alice", Email: "alice@example.com", Password: "old-secret"}}
	tx := &fakeTx{}
	uc := NewChangePasswordUseCase(repo, tx)

	err := uc.Execute(context.Background(), ChangePasswordRequest{
		Username:    "alice",
		Email:       "alice@example.com",
		OldPassword: "old-secret",
		NewPassword: "new-secret",
	})

	require.NoError(t, err)
	require.Len(t, repo.updated, 1)
	assert.Equal(t, "alice", repo.updated[0].username)
	assert.Equal(t, "alice@example.com", repo.updated[0].email)
	assert.Equal(t, "new-secret", repo.updated[0].newPassword)
	assert.Equal(t, 1, tx.calls)
}

// TestChangePassword_WrongOldPassword 旧密码错误时零写入
func TestChangePassword_WrongOldPassword(t *testing.T) {
	repo := &fakeUserRepo{matched: &user.User{Username: "alice", Email: "alice@example.com", Password: "old-secret"}}
	uc := NewChangePasswordUseCase(repo, &fakeTx{})

	err := uc.Execute(context.Background(), ChangePasswordRequest{
		Username:    "alice",
		Email:       "alice@example.com",
		OldPassword: "guessed-wrong",
		NewPassword: "new-secret",
	})

	assert.ErrorIs(t, err, user.ErrInvalidCredentials)
	assert.Empty(t, repo.updated)
}

// TestChangePassword_WrongEmail 邮箱不匹配与旧密码错误返回同一个错误
// 单一谓词校验：响应不泄露具体哪个字段不匹配
func TestChangePassword_WrongEmail(t *testing.T) {
	repo := &fakeUserRepo{matched: &user.User{Username: "alice", Email: "alice@example.com", Password: "old-secret"}}
	uc := NewChangePasswordUseCase(repo, &fakeTx{})

	err := uc.Execute(context.Background(), ChangePasswordRequest{
		Username:    "alice",
		Email:       "wrong@example.com",
		OldPassword: "old-secret",
		NewPassword: "new-secret",
	})

	assert.ErrorIs(t, err, user.ErrInvalidCredentials)
	assert.Empty(t, repo.updated)
}

// TestChangePassword_UnknownUser 用户不存在时同样返回凭证错误
func TestChangePassword_UnknownUser(t *testing.T) {
	repo := &fakeUserRepo{}
	uc := NewChangePasswordUseCase(repo, &fakeTx{})

	err := uc.Execute(context.Background(), ChangePasswordRequest{
		Username:    "nobody",
		Email:       "nobody@example.com",
		OldPassword: "x",
		NewPassword: "y",
	})

	assert.ErrorIs(t, err, user.ErrInvalidCredentials)
	assert.Empty(t, repo.updated)
}
