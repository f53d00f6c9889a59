package services

import (
	"context"
	"database/sql"

	"beacon-chat/internal/domain/account"
	"beacon-chat/internal/repository"
	beacon_errors "beacon-chat/pkg/errors"

	"github.com/google/uuid"
)

type AccountService struct {
	accountRepo repository.AccountRepository
}

func NewAccountService(accountRepo repository.AccountRepository) *AccountService {
	return &AccountService{accountRepo: accountRepo}
}

type UpdateProfileInput struct {
	DisplayName string
	AvatarURL   string
}

func (s *AccountService) GetByID(ctx context.Context, id uuid.UUID) (account.Account, error) {
	return s.accountRepo.GetByID(ctx, id)
}

func (s *AccountService) UpdateProfile(ctx context.Context, id uuid.UUID, in UpdateProfileInput) (account.Account, error) {
	a, err := s.accountRepo.GetByID(ctx, id)
	if err != nil {
		return account.Account{}, err
	}
	if in.DisplayName != "" {
		a.DisplayName = in.DisplayName
	}
	if in.AvatarURL != "" {
		a.AvatarURL = sql.NullString{String: in.AvatarURL, Valid: true}
	}
	if err := s.accountRepo.Update(ctx, a); err != nil {
		return account.Account{}, err
	}
	return a, nil
}

// SetPresence persists the presence transition. Offline transitions clear
// the connection id and stamp last-seen in the store.
func (s *AccountService) SetPresence(ctx context.Context, id uuid.UUID, online bool, connectionID string) error {
	return s.accountRepo.SetPresence(ctx, id, online, connectionID)
}

func (s *AccountService) Search(ctx context.Context, query string, limit int) ([]account.Account, error) {
	if query == "" {
		return nil, beacon_errors.ErrInvalidInput
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	return s.accountRepo.Search(ctx, query, limit)
}

func (s *AccountService) List(ctx context.Context, kind string, page, limit int) ([]account.Account, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.accountRepo.List(ctx, kind, page, limit)
}

func (s *AccountService) Deactivate(ctx context.Context, id uuid.UUID) error {
	return s.accountRepo.Deactivate(ctx, id)
}
