package windows

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mandibazaar/mandi-backend/pkg/db/models"
	"github.com/mandibazaar/mandi-backend/pkg/enums"
	pkgerrors "github.com/mandibazaar/mandi-backend/pkg/errors"
	"github.com/mandibazaar/mandi-backend/pkg/outbox"
	"github.com/mandibazaar/mandi-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// CreateWindowInput carries the fields needed to open a bulk order window.
type CreateWindowInput struct {
	CreatorAccountID uuid.UUID
	ActorUserID      uuid.UUID
	ActorRole        string
	Title            string
	Description      *string
	WindowStartTime  time.Time
	WindowEndTime    time.Time
}

// WindowCreatedEvent is emitted when a window opens.
type WindowCreatedEvent struct {
	WindowID         uuid.UUID `json:"window_id"`
	CreatorAccountID uuid.UUID `json:"creator_account_id"`
	Title            string    `json:"title"`
	WindowEndTime    time.Time `json:"window_end_time"`
}

// Service defines window lifecycle operations outside of settlement.
type Service interface {
	Create(ctx context.Context, input CreateWindowInput) (*models.BulkOrderWindow, error)
	Get(ctx context.Context, windowID uuid.UUID) (*models.BulkOrderWindow, error)
	List(ctx context.Context, params pagination.Params, status *enums.WindowStatus) (*WindowList, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
	now    func() time.Time
}

// NewService builds a windows service.
func NewService(repo Repository, tx txRunner, outboxSvc outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("windows repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		repo:   repo,
		tx:     tx,
		outbox: outboxSvc,
		now:    time.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateWindowInput) (*models.BulkOrderWindow, error) {
	if input.CreatorAccountID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "account identity missing")
	}
	if input.Title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title required")
	}
	if !input.WindowEndTime.After(input.WindowStartTime) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "window end must be after window start")
	}
	if input.WindowEndTime.Before(s.now().UTC()) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "window end must be in the future")
	}

	var created *models.BulkOrderWindow
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		account, err := repo.FindAccount(ctx, input.CreatorAccountID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeForbidden, "account not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load account")
		}
		if account.Role != enums.AccountRoleVendor {
			return pkgerrors.New(pkgerrors.CodeForbidden, "only vendors can create bulk order windows")
		}
		if !account.IsActive {
			return pkgerrors.New(pkgerrors.CodeForbidden, "account is suspended")
		}

		window := &models.BulkOrderWindow{
			ID:               uuid.New(),
			CreatorAccountID: account.ID,
			Title:            input.Title,
			Description:      input.Description,
			WindowStartTime:  input.WindowStartTime.UTC(),
			WindowEndTime:    input.WindowEndTime.UTC(),
			Status:           enums.WindowStatusOpen,
		}
		if _, err := repo.Create(ctx, window); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create window")
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventWindowCreated,
			AggregateType: enums.AggregateWindow,
			AggregateID:   window.ID,
			Version:       1,
			Actor: &outbox.ActorRef{
				UserID:    input.ActorUserID,
				AccountID: &account.ID,
				Role:      input.ActorRole,
			},
			Data: WindowCreatedEvent{
				WindowID:         window.ID,
				CreatorAccountID: account.ID,
				Title:            window.Title,
				WindowEndTime:    window.WindowEndTime,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return err
		}

		created = window
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) Get(ctx context.Context, windowID uuid.UUID) (*models.BulkOrderWindow, error) {
	if windowID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "window id required")
	}
	window, err := s.repo.FindByID(ctx, windowID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "bulk order window not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load window")
	}
	return window, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, status *enums.WindowStatus) (*WindowList, error) {
	list, err := s.repo.List(ctx, params, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list windows")
	}
	return list, nil
}
