package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/obsidianatelier/storefront/internal/ai"
	"github.com/obsidianatelier/storefront/internal/events"
	"github.com/obsidianatelier/storefront/internal/images"
	"github.com/obsidianatelier/storefront/internal/logging"
	"github.com/obsidianatelier/storefront/internal/models"
	"github.com/obsidianatelier/storefront/internal/repo"
	"github.com/obsidianatelier/storefront/internal/storage"
	"github.com/obsidianatelier/storefront/internal/transport"
)

const defaultGenerateTimeout = 5 * time.Minute

type TryOnService struct {
	Repo      *repo.GormRepo
	Store     storage.ObjectStore
	Generator ai.Generator
	Producer  events.Publisher

	DailyLimit      int
	GenerateTimeout time.Duration
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func dayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Quota reports how many attempts the user has left today. Derived by
// counting today's records: every record created today counts, whatever it
// later resolved to.
func (s *TryOnService) Quota(ctx context.Context, userID uuid.UUID) (transport.QuotaResponse, error) {
	used, err := s.Repo.CountTryOnsSince(ctx, userID, startOfDay(time.Now()))
	if err != nil {
		return transport.QuotaResponse{}, err
	}

	remaining := s.DailyLimit - int(used)
	if remaining < 0 {
		remaining = 0
	}
	return transport.QuotaResponse{Limit: s.DailyLimit, Used: int(used), Remaining: remaining}, nil
}

// Submit runs the no-request -> pending transition: store the photo, create
// the pending record while consuming one unit of quota, and hand back the
// record for the caller to start generation on. The optimistic quota check
// runs before the photo upload; the authoritative one is the atomic
// check-and-increment inside the record-creation transaction.
func (s *TryOnService) Submit(ctx context.Context, userID, productID uuid.UUID, photo []byte) (*models.TryOn, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: sign in to use the stylist", ErrUnauthorized)
	}
	if productID == uuid.Nil {
		return nil, fmt.Errorf("%w: product_id is required", ErrValidation)
	}
	if len(photo) == 0 {
		return nil, fmt.Errorf("%w: photo is required", ErrValidation)
	}

	if _, err := s.Repo.GetProduct(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product does not exist", ErrNotFound)
		}
		return nil, err
	}

	quota, err := s.Quota(ctx, userID)
	if err != nil {
		return nil, err
	}
	if quota.Remaining <= 0 {
		return nil, fmt.Errorf("%w: daily limit reached", ErrQuotaExceeded)
	}

	optimized, err := images.Optimize(photo)
	if err != nil {
		return nil, fmt.Errorf("%w: photo is not a readable image", ErrValidation)
	}

	now := time.Now().UTC()
	key := fmt.Sprintf("tryons/%s/%s.jpg", userID, uuid.NewString())
	if err := s.Store.Put(ctx, key, bytes.NewReader(optimized), "image/jpeg"); err != nil {
		return nil, err
	}

	record := &models.TryOn{
		UserID:       userID,
		ProductID:    productID,
		UserImageKey: key,
		Status:       models.TryOnStatusPending,
		CreatedAt:    now,
	}
	if err := s.Repo.CreateTryOnWithQuota(ctx, record, dayKey(now), s.DailyLimit); err != nil {
		if errors.Is(err, repo.ErrQuotaExhausted) {
			return nil, fmt.Errorf("%w: daily limit reached", ErrQuotaExceeded)
		}
		return nil, err
	}

	s.publish(ctx, record, "tryon_submitted")
	return record, nil
}

// Generate runs the pending -> completed|failed transition. It is safe to
// call on a record in any state; terminal records are left untouched.
func (s *TryOnService) Generate(ctx context.Context, id uuid.UUID) error {
	timeout := s.GenerateTimeout
	if timeout <= 0 {
		timeout = defaultGenerateTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	l := logging.FromContext(ctx).With("tryon_id", id)

	record, err := s.Repo.GetTryOn(ctx, id)
	if err != nil {
		return err
	}
	if record.Status != models.TryOnStatusPending {
		return nil
	}

	generated, err := s.generateImage(ctx, record)
	if err != nil {
		l.Warn("tryon_generation_failed", "error", err)
		return s.fail(ctx, record, err)
	}

	key := fmt.Sprintf("tryons/%s/generated/%s.jpg", record.UserID, uuid.NewString())
	if err := s.Store.Put(ctx, key, bytes.NewReader(generated), "image/jpeg"); err != nil {
		l.Error("tryon_result_store_failed", "error", err)
		return s.fail(ctx, record, err)
	}

	if err := s.Repo.CompleteTryOn(ctx, record.ID, key); err != nil {
		// Lost to a concurrent terminal write; the record stays as is.
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	record.Status = models.TryOnStatusCompleted
	s.publish(ctx, record, "tryon_completed")
	l.Info("tryon_completed")
	return nil
}

func (s *TryOnService) generateImage(ctx context.Context, record *models.TryOn) ([]byte, error) {
	product, err := s.Repo.GetProduct(ctx, record.ProductID)
	if err != nil {
		return nil, err
	}

	personURL, err := s.Store.PresignGet(ctx, record.UserImageKey)
	if err != nil {
		return nil, err
	}

	productURLs := make([]string, 0, len(product.Images))
	for _, img := range product.Images {
		url, err := s.Store.PresignGet(ctx, img.Key)
		if err != nil {
			continue
		}
		productURLs = append(productURLs, url)
	}

	return s.Generator.Generate(ctx, personURL, productURLs, product.Name, product.Description)
}

// fail records the failure. The write runs outside the generation deadline
// so a timed-out attempt still lands in failed instead of pending forever.
func (s *TryOnService) fail(ctx context.Context, record *models.TryOn, cause error) error {
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	message := cause.Error()
	if errors.Is(cause, context.DeadlineExceeded) {
		message = "generation timed out"
	}

	if err := s.Repo.FailTryOn(writeCtx, record.ID, message); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	record.Status = models.TryOnStatusFailed
	s.publish(writeCtx, record, "tryon_failed")
	return cause
}

func (s *TryOnService) Get(ctx context.Context, userID, id uuid.UUID) (*models.TryOn, error) {
	record, err := s.Repo.GetTryOn(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.UserID != userID {
		return nil, fmt.Errorf("%w: no such try-on", ErrNotFound)
	}
	return record, nil
}

func (s *TryOnService) List(ctx context.Context, userID uuid.UUID) ([]models.TryOn, error) {
	return s.Repo.ListTryOns(ctx, userID)
}

func (s *TryOnService) publish(ctx context.Context, record *models.TryOn, eventType string) {
	if s.Producer == nil {
		return
	}
	event := map[string]any{
		"type":       eventType,
		"tryon_id":   record.ID.String(),
		"user_id":    record.UserID.String(),
		"product_id": record.ProductID.String(),
		"status":     record.Status,
	}
	if err := s.Producer.Publish(ctx, events.TopicTryOn, record.UserID.String(), event); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed", "tryon_id", record.ID, "error", err)
	}
}
