package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"hms/internal/domain"
)

type stubLookupRepo struct {
	staff []domain.Option
	err   error
}

func (r *stubLookupRepo) Patients(context.Context) ([]domain.Option, error) {
	return []domain.Option{{ID: 10, Display: "P-0010 - Mia Chen"}}, r.err
}

func (r *stubLookupRepo) ActiveStaff(context.Context) ([]domain.Option, error) {
	return r.staff, r.err
}

func (r *stubLookupRepo) Rooms(context.Context) ([]domain.Option, error) {
	return nil, r.err
}

func TestLookupService_Staff(t *testing.T) {
	repo := &stubLookupRepo{staff: []domain.Option{{ID: 5, Display: "Ana Ruiz"}}}
	svc := NewLookupService(repo, zap.NewNop())

	options, err := svc.Staff(context.Background())
	require.NoError(t, err)
	assert.Equal(t, repo.staff, options)
}

func TestLookupService_WrapsErrors(t *testing.T) {
	boom := errors.New("db down")
	svc := NewLookupService(&stubLookupRepo{err: boom}, zap.NewNop())

	_, err := svc.Patients(context.Background())
	assert.ErrorIs(t, err, boom)

	_, err = svc.Rooms(context.Background())
	assert.ErrorIs(t, err, boom)
}
