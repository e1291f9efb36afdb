package services

import (
	"context"
	"errors"
	"time"

	"github.com/vnkhanh/bkhome-server/models"
	"github.com/vnkhanh/bkhome-server/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormclause "gorm.io/gorm/clause"
)

type AttributeInput struct {
	ElectricityPrice float64
	WaterPrice       float64
	Description      string
	WifiInternet     bool
	AirConditioner   bool
	WaterHeater      bool
	Refrigerator     bool
	WashingMachine   bool
	EnclosedToilet   bool
	SafeDevice       bool
}

type CreateRoomInput struct {
	OwnerID          uint
	Name             string
	Address          string
	Type             models.RoomType
	Area             float64
	DistanceToSchool float64
	Price            int64
	Attribute        AttributeInput
}

// UpdateRoomInput holds the fields to change; nil leaves a column untouched.
type UpdateRoomInput struct {
	Name             *string
	Address          *string
	Type             *models.RoomType
	Area             *float64
	DistanceToSchool *float64
	Price            *int64

	ElectricityPrice *float64
	WaterPrice       *float64
	Description      *string
	WifiInternet     *bool
	AirConditioner   *bool
	WaterHeater      *bool
	Refrigerator     *bool
	WashingMachine   *bool
	EnclosedToilet   *bool
	SafeDevice       *bool
}

func (in UpdateRoomInput) roomColumns() map[string]interface{} {
	cols := map[string]interface{}{}
	setIf(cols, "name", in.Name)
	setIf(cols, "address", in.Address)
	setIf(cols, "type", in.Type)
	setIf(cols, "area", in.Area)
	setIf(cols, "distance_to_school", in.DistanceToSchool)
	setIf(cols, "price", in.Price)
	return cols
}

func (in UpdateRoomInput) attributeColumns() map[string]interface{} {
	cols := map[string]interface{}{}
	setIf(cols, "electronic_price", in.ElectricityPrice)
	setIf(cols, "water_price", in.WaterPrice)
	setIf(cols, "description", in.Description)
	setIf(cols, "wifi_internet", in.WifiInternet)
	setIf(cols, "air_conditioner", in.AirConditioner)
	setIf(cols, "water_heater", in.WaterHeater)
	setIf(cols, "refrigerator", in.Refrigerator)
	setIf(cols, "washing_machine", in.WashingMachine)
	setIf(cols, "enclosed_toilet", in.EnclosedToilet)
	setIf(cols, "safed_device", in.SafeDevice)
	return cols
}

func setIf[T any](cols map[string]interface{}, column string, v *T) {
	if v != nil {
		cols[column] = *v
	}
}

type RoomService struct {
	db    *gorm.DB
	users *UserService
	wf    *workflow
	log   *zap.Logger
}

func NewRoomService(db *gorm.DB, store storage.Storage, users *UserService, opts TxOptions, log *zap.Logger) *RoomService {
	log = log.Named("room")
	return &RoomService{
		db:    db,
		users: users,
		wf:    &workflow{db: db, store: store, opts: opts, log: log},
		log:   log,
	}
}

// withAggregate preloads owner, attribute, images and reviews (with reviewer
// and review images).
func withAggregate(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Owner", publicUserColumns).
		Preload("Attribute").
		Preload("Images", orderByID).
		Preload("Reviews", orderByID).
		Preload("Reviews.User", publicUserColumns).
		Preload("Reviews.Images", orderByID)
}

func publicUserColumns(db *gorm.DB) *gorm.DB {
	return db.Select("id", "username", "avatar", "role", "created_at", "updated_at")
}

func orderByID(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}

func (s *RoomService) FindOne(ctx context.Context, id uint) (*models.Room, error) {
	var room models.Room
	err := withAggregate(s.db.WithContext(ctx)).First(&room, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFoundError("Room not found")
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (s *RoomService) FindAll(ctx context.Context, f RoomFilter) (*Paged[models.Room], error) {
	return s.list(ctx, BuildPredicate(f), f.Query)
}

func (s *RoomService) FindByOwner(ctx context.Context, ownerID uint, f RoomFilter) (*Paged[models.Room], error) {
	return s.list(ctx, BuildPredicate(f).ForOwner(ownerID), f.Query)
}

func (s *RoomService) list(ctx context.Context, p Predicate, q Query) (*Paged[models.Room], error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Room{}).Scopes(p.Scope).Count(&total).Error; err != nil {
		return nil, err
	}

	rooms := []models.Room{}
	err := withAggregate(s.db.WithContext(ctx)).
		Scopes(p.Scope, q.paginate("rooms")).
		Find(&rooms).Error
	if err != nil {
		return nil, err
	}
	return &Paged[models.Room]{Items: rooms, Pagination: q.pagination(total)}, nil
}

// Export returns every room matching f, newest first, without pagination.
func (s *RoomService) Export(ctx context.Context, f RoomFilter) ([]models.Room, error) {
	rooms := []models.Room{}
	err := s.db.WithContext(ctx).
		Preload("Owner", publicUserColumns).
		Preload("Attribute").
		Preload("Images", orderByID).
		Scopes(BuildPredicate(f).Scope).
		Order("rooms.updated_at DESC").
		Find(&rooms).Error
	return rooms, err
}

// Create inserts the room, its attribute row and one image row per file in a
// single transaction. Objects uploaded before a failure are deleted again.
func (s *RoomService) Create(ctx context.Context, in CreateRoomInput, images []storage.File) (*models.Room, error) {
	if !models.ValidRoomType(in.Type) {
		return nil, validationError("Invalid room type")
	}
	owner, err := s.users.FindOneByID(ctx, in.OwnerID)
	if err != nil {
		return nil, err
	}
	if owner.Role != models.RoleOwner {
		return nil, validationError("User is not owner")
	}

	var room models.Room
	err = s.wf.run(ctx, func(tx *gorm.DB, batch *imageBatch) error {
		room = models.Room{
			OwnerID:          in.OwnerID,
			Name:             in.Name,
			Address:          in.Address,
			Type:             in.Type,
			Area:             in.Area,
			DistanceToSchool: in.DistanceToSchool,
			Price:            in.Price,
		}
		if err := tx.Create(&room).Error; err != nil {
			return err
		}

		attr := models.RoomAttribute{
			RoomID:           room.ID,
			ElectricityPrice: in.Attribute.ElectricityPrice,
			WaterPrice:       in.Attribute.WaterPrice,
			Description:      in.Attribute.Description,
			WifiInternet:     in.Attribute.WifiInternet,
			AirConditioner:   in.Attribute.AirConditioner,
			WaterHeater:      in.Attribute.WaterHeater,
			Refrigerator:     in.Attribute.Refrigerator,
			WashingMachine:   in.Attribute.WashingMachine,
			EnclosedToilet:   in.Attribute.EnclosedToilet,
			SafeDevice:       in.Attribute.SafeDevice,
		}
		if err := tx.Create(&attr).Error; err != nil {
			return err
		}

		room.Images = make([]models.RoomImage, 0, len(images))
		return uploadImages(ctx, batch, entityRoom, room.ID, images, func(url string) error {
			img := models.RoomImage{RoomID: room.ID, ImageURL: url}
			if err := tx.Create(&img).Error; err != nil {
				return err
			}
			room.Images = append(room.Images, img)
			return nil
		})
	})
	if err != nil {
		return nil, badRequest(err, "Create room failed")
	}

	s.log.Info("room created", zap.Uint("room_id", room.ID), zap.Int("images", len(room.Images)))
	return s.FindOne(ctx, room.ID)
}

// Update changes the given columns. A non-empty images list replaces the
// whole image set; old objects are removed only after the commit.
func (s *RoomService) Update(ctx context.Context, id uint, in UpdateRoomInput, images []storage.File) (*models.Room, error) {
	if in.Type != nil && !models.ValidRoomType(*in.Type) {
		return nil, validationError("Invalid room type")
	}
	if _, err := s.FindOne(ctx, id); err != nil {
		return nil, err
	}

	err := s.wf.run(ctx, func(tx *gorm.DB, batch *imageBatch) error {
		if err := lockRow(tx, &models.Room{}, id, "Room not found"); err != nil {
			return err
		}
		cols := in.roomColumns()
		cols["updated_at"] = time.Now()
		if err := tx.Model(&models.Room{}).Where("id = ?", id).Updates(cols).Error; err != nil {
			return err
		}
		if cols := in.attributeColumns(); len(cols) > 0 {
			if err := tx.Model(&models.RoomAttribute{}).Where("room_id = ?", id).Updates(cols).Error; err != nil {
				return err
			}
		}

		if len(images) == 0 {
			return nil
		}
		var current []models.RoomImage
		if err := tx.Where("room_id = ?", id).Find(&current).Error; err != nil {
			return err
		}
		err := uploadImages(ctx, batch, entityRoom, id, images, func(url string) error {
			return tx.Create(&models.RoomImage{RoomID: id, ImageURL: url}).Error
		})
		if err != nil {
			return err
		}
		return replaceImages(tx, batch, &models.RoomImage{}, roomImageIDs(current), roomImageURLs(current))
	})
	if err != nil {
		return nil, badRequest(err, "Update room failed")
	}
	return s.FindOne(ctx, id)
}

// Delete removes the room with its attribute, images and reviews. Stored
// objects go once the rows are gone.
func (s *RoomService) Delete(ctx context.Context, id uint) error {
	if _, err := s.FindOne(ctx, id); err != nil {
		return err
	}

	err := s.wf.run(ctx, func(tx *gorm.DB, batch *imageBatch) error {
		if err := lockRow(tx, &models.Room{}, id, "Room not found"); err != nil {
			return err
		}
		var room models.Room
		if err := tx.Preload("Images").Preload("Reviews.Images").First(&room, id).Error; err != nil {
			return err
		}

		reviewIDs := make([]uint, 0, len(room.Reviews))
		for _, r := range room.Reviews {
			reviewIDs = append(reviewIDs, r.ID)
			batch.discard(reviewImageURLs(r.Images)...)
		}
		if len(reviewIDs) > 0 {
			if err := tx.Where("review_id IN ?", reviewIDs).Delete(&models.ReviewImage{}).Error; err != nil {
				return err
			}
		}
		for _, model := range []interface{}{&models.Review{}, &models.RoomImage{}, &models.RoomAttribute{}} {
			if err := tx.Where("room_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		if err := tx.Delete(&models.Room{}, id).Error; err != nil {
			return err
		}
		batch.discard(roomImageURLs(room.Images)...)
		return nil
	})
	if err != nil {
		return badRequest(err, "Delete room failed")
	}
	s.log.Info("room deleted", zap.Uint("room_id", id))
	return nil
}

// lockRow takes a row lock on the parent so concurrent writers of its
// images run one after the other. The image set must be read after it.
// SQLite has no row locks; the dialect drops the clause.
func lockRow(tx *gorm.DB, model interface{}, id uint, notFound string) error {
	err := tx.Clauses(gormclause.Locking{Strength: "UPDATE"}).Select("id").First(model, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFoundError(notFound)
	}
	return err
}

// replaceImages deletes the old image rows and queues their objects.
func replaceImages(tx *gorm.DB, batch *imageBatch, model interface{}, ids []uint, urls []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := tx.Where("id IN ?", ids).Delete(model).Error; err != nil {
		return err
	}
	batch.discard(urls...)
	return nil
}

func roomImageIDs(images []models.RoomImage) []uint {
	ids := make([]uint, 0, len(images))
	for _, img := range images {
		ids = append(ids, img.ID)
	}
	return ids
}

func roomImageURLs(images []models.RoomImage) []string {
	urls := make([]string, 0, len(images))
	for _, img := range images {
		urls = append(urls, img.ImageURL)
	}
	return urls
}
