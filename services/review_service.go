package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/vnkhanh/bkhome-server/models"
	"github.com/vnkhanh/bkhome-server/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	minStar = 1
	maxStar = 5
)

type CreateReviewInput struct {
	UserID  uint
	RoomID  uint
	Content string
	Star    int
}

// UpdateReviewInput holds the fields to change; nil leaves a column untouched.
type UpdateReviewInput struct {
	Content *string
	Star    *int
}

type ReviewService struct {
	db    *gorm.DB
	users *UserService
	wf    *workflow
	log   *zap.Logger
}

func NewReviewService(db *gorm.DB, store storage.Storage, users *UserService, opts TxOptions, log *zap.Logger) *ReviewService {
	log = log.Named("review")
	return &ReviewService{
		db:    db,
		users: users,
		wf:    &workflow{db: db, store: store, opts: opts, log: log},
		log:   log,
	}
}

func validStar(star int) bool {
	return star >= minStar && star <= maxStar
}

func (s *ReviewService) FindOne(ctx context.Context, id uint) (*models.Review, error) {
	var review models.Review
	err := s.db.WithContext(ctx).
		Preload("User", publicUserColumns).
		Preload("Images", orderByID).
		First(&review, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFoundError("Review not found")
	}
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// ListByRoom pages the reviews of one room.
func (s *ReviewService) ListByRoom(ctx context.Context, roomID uint, q Query) (*Paged[models.Review], error) {
	if err := s.roomExists(s.db.WithContext(ctx), roomID); err != nil {
		return nil, err
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Review{}).Where("room_id = ?", roomID).Count(&total).Error; err != nil {
		return nil, err
	}
	reviews := []models.Review{}
	err := s.db.WithContext(ctx).
		Preload("User", publicUserColumns).
		Preload("Images", orderByID).
		Where("room_id = ?", roomID).
		Scopes(q.paginate("reviews")).
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}
	return &Paged[models.Review]{Items: reviews, Pagination: q.pagination(total)}, nil
}

func (s *ReviewService) roomExists(db *gorm.DB, roomID uint) error {
	var count int64
	if err := db.Model(&models.Room{}).Where("id = ?", roomID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return notFoundError("Room not found")
	}
	return nil
}

// Create stores the review and one image row per file in one transaction.
func (s *ReviewService) Create(ctx context.Context, in CreateReviewInput, images []storage.File) (*models.Review, error) {
	if strings.TrimSpace(in.Content) == "" {
		return nil, validationError("Content is required")
	}
	if !validStar(in.Star) {
		return nil, validationError("Star must be between 1 and 5")
	}
	user, err := s.users.FindOneByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	if user.Role != models.RoleUser {
		return nil, validationError("Only user can review room")
	}
	if err := s.roomExists(s.db.WithContext(ctx), in.RoomID); err != nil {
		return nil, err
	}

	var review models.Review
	err = s.wf.run(ctx, func(tx *gorm.DB, batch *imageBatch) error {
		review = models.Review{
			UserID:  in.UserID,
			RoomID:  in.RoomID,
			Content: in.Content,
			Star:    in.Star,
		}
		if err := tx.Create(&review).Error; err != nil {
			return err
		}
		return uploadImages(ctx, batch, entityReview, in.RoomID, images, func(url string) error {
			return tx.Create(&models.ReviewImage{ReviewID: review.ID, ImageURL: url}).Error
		})
	})
	if err != nil {
		return nil, badRequest(err, "Create review failed")
	}
	s.log.Info("review created", zap.Uint("review_id", review.ID), zap.Uint("room_id", review.RoomID))
	return s.FindOne(ctx, review.ID)
}

// Update changes content and star. A non-empty images list replaces the
// review's images; otherwise they are kept.
func (s *ReviewService) Update(ctx context.Context, id uint, in UpdateReviewInput, images []storage.File) (*models.Review, error) {
	if in.Star != nil && !validStar(*in.Star) {
		return nil, validationError("Star must be between 1 and 5")
	}
	if in.Content != nil && strings.TrimSpace(*in.Content) == "" {
		return nil, validationError("Content is required")
	}
	old, err := s.FindOne(ctx, id)
	if err != nil {
		return nil, err
	}

	err = s.wf.run(ctx, func(tx *gorm.DB, batch *imageBatch) error {
		if err := lockRow(tx, &models.Review{}, id, "Review not found"); err != nil {
			return err
		}
		cols := map[string]interface{}{"updated_at": time.Now()}
		setIf(cols, "content", in.Content)
		setIf(cols, "star", in.Star)
		if err := tx.Model(&models.Review{}).Where("id = ?", id).Updates(cols).Error; err != nil {
			return err
		}

		if len(images) == 0 {
			return nil
		}
		var current []models.ReviewImage
		if err := tx.Where("review_id = ?", id).Find(&current).Error; err != nil {
			return err
		}
		err := uploadImages(ctx, batch, entityReview, old.RoomID, images, func(url string) error {
			return tx.Create(&models.ReviewImage{ReviewID: id, ImageURL: url}).Error
		})
		if err != nil {
			return err
		}
		return replaceImages(tx, batch, &models.ReviewImage{}, reviewImageIDs(current), reviewImageURLs(current))
	})
	if err != nil {
		return nil, badRequest(err, "Update review failed")
	}
	return s.FindOne(ctx, id)
}

func (s *ReviewService) Delete(ctx context.Context, id uint) error {
	if _, err := s.FindOne(ctx, id); err != nil {
		return err
	}
	err := s.wf.run(ctx, func(tx *gorm.DB, batch *imageBatch) error {
		if err := lockRow(tx, &models.Review{}, id, "Review not found"); err != nil {
			return err
		}
		var current []models.ReviewImage
		if err := tx.Where("review_id = ?", id).Find(&current).Error; err != nil {
			return err
		}
		if err := tx.Where("review_id = ?", id).Delete(&models.ReviewImage{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Review{}, id).Error; err != nil {
			return err
		}
		batch.discard(reviewImageURLs(current)...)
		return nil
	})
	if err != nil {
		return badRequest(err, "Delete review failed")
	}
	s.log.Info("review deleted", zap.Uint("review_id", id))
	return nil
}

func reviewImageIDs(images []models.ReviewImage) []uint {
	ids := make([]uint, 0, len(images))
	for _, img := range images {
		ids = append(ids, img.ID)
	}
	return ids
}

func reviewImageURLs(images []models.ReviewImage) []string {
	urls := make([]string, 0, len(images))
	for _, img := range images {
		urls = append(urls, img.ImageURL)
	}
	return urls
}
