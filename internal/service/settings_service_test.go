package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/course_store_server/internal/model/dto"
	"github.com/qs3c/course_store_server/internal/repository"
)

func TestSettingsService_Defaults(t *testing.T) {
	env := newStoreEnv(t)
	svc := NewSettingsService(env.settings)

	s := svc.Get()
	assert.Equal(t, "₹", s.CurrencySymbol)
	assert.Equal(t, "Asia/Kolkata", s.Timezone)
}

func TestSettingsService_Update(t *testing.T) {
	env := newStoreEnv(t)
	svc := NewSettingsService(env.settings)
	ctx := context.Background()

	s, err := svc.Update(ctx, &dto.SettingsRequest{Name: "Byte Shelf", CurrencySymbol: "$", Timezone: "America/New_York"})
	require.NoError(t, err)
	assert.Equal(t, "Byte Shelf", s.Name)
	assert.Equal(t, "support@example.com", s.SupportEmail, "blank fields fall back to defaults")
	assert.Equal(t, "$", svc.Get().CurrencySymbol)

	_, err = svc.Update(ctx, &dto.SettingsRequest{Timezone: "Mars/Olympus"})
	assert.Equal(t, ErrInvalidTimezone, err)
	assert.Equal(t, "America/New_York", svc.Get().Timezone)
}

func TestSettingsService_UpdatePersistFailure(t *testing.T) {
	env := newStoreEnv(t)
	svc := NewSettingsService(env.settings)
	env.store.setDown(true)

	s, err := svc.Update(context.Background(), &dto.SettingsRequest{CurrencySymbol: "€"})
	assert.True(t, errors.Is(err, repository.ErrPersist))
	assert.Equal(t, "€", s.CurrencySymbol)
	assert.Equal(t, "€", svc.Get().CurrencySymbol)
}
