package service

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/course_store_server/internal/model/dto"
	"github.com/qs3c/course_store_server/internal/repository"
	"github.com/qs3c/course_store_server/internal/testutil"
)

func setupUserService(t *testing.T, storage ObjectStorage) (*UserService, *gorm.DB, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	svc := NewUserService(repository.NewUserRepository(db), storage)

	cleanup := func() {
		testutil.CleanupTestDB(t, db)
	}
	return svc, db, cleanup
}

func TestUserService_GetProfile(t *testing.T) {
	svc, db, cleanup := setupUserService(t, nil)
	defer cleanup()

	user := testutil.TestUser(t, db, testutil.WithUsername("reader"), testutil.WithEmail("reader@example.com"))

	info, err := svc.GetProfile(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "reader", info.Username)
	assert.Equal(t, "reader@example.com", info.Email)
	assert.Equal(t, "customer", info.Role)

	_, err = svc.GetProfile(99999)
	assert.Equal(t, ErrUserNotFound, err)
}

func TestUserService_UpdateProfile(t *testing.T) {
	svc, db, cleanup := setupUserService(t, nil)
	defer cleanup()

	user := testutil.TestUser(t, db, testutil.WithUsername("first"))
	testutil.TestUser(t, db, testutil.WithUsername("taken"))

	newName := "renamed"
	info, err := svc.UpdateProfile(user.ID, &dto.UpdateProfileRequest{Username: &newName})
	require.NoError(t, err)
	assert.Equal(t, "renamed", info.Username)

	taken := "taken"
	_, err = svc.UpdateProfile(user.ID, &dto.UpdateProfileRequest{Username: &taken})
	assert.Equal(t, ErrUsernameExists, err)

	// 与当前用户名相同不算冲突
	_, err = svc.UpdateProfile(user.ID, &dto.UpdateProfileRequest{Username: &newName})
	assert.NoError(t, err)

	_, err = svc.UpdateProfile(99999, &dto.UpdateProfileRequest{})
	assert.Equal(t, ErrUserNotFound, err)
}

func TestUserService_UploadAvatar(t *testing.T) {
	storage := &fakeStorage{}
	svc, db, cleanup := setupUserService(t, storage)
	defer cleanup()

	user := testutil.TestUser(t, db)

	url, err := svc.UploadAvatar(user.ID, strings.NewReader("png-bytes"), "me.PNG")
	require.NoError(t, err)
	require.Len(t, storage.keys, 1)
	assert.True(t, strings.HasSuffix(storage.keys[0], ".png"))
	assert.Equal(t, "image/png", storage.contentTypes[0])

	info, err := svc.GetProfile(user.ID)
	require.NoError(t, err)
	assert.Equal(t, url, info.AvatarURL)

	_, err = svc.UploadAvatar(user.ID, strings.NewReader("gif"), "anim.gif")
	assert.Equal(t, ErrInvalidFormat, err)

	_, err = svc.UploadAvatar(user.ID, bytes.NewReader(make([]byte, maxAvatarSize+1)), "big.jpg")
	assert.Equal(t, ErrFileTooLarge, err)
}

func TestUserService_UploadAvatarWithoutStorage(t *testing.T) {
	svc, _, cleanup := setupUserService(t, nil)
	defer cleanup()

	_, err := svc.UploadAvatar(1, strings.NewReader("x"), "a.jpg")
	assert.Equal(t, ErrStorageUnavailable, err)
}
