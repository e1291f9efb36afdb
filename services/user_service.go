package services

import (
	"context"
	"errors"
	"strings"

	"github.com/vnkhanh/bkhome-server/models"
	"github.com/vnkhanh/bkhome-server/storage"
	"github.com/vnkhanh/bkhome-server/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CreateUserInput struct {
	Username string
	Password string
	Role     models.Role
}

type UserService struct {
	db    *gorm.DB
	store storage.Storage
	log   *zap.Logger
}

func NewUserService(db *gorm.DB, store storage.Storage, log *zap.Logger) *UserService {
	return &UserService{db: db, store: store, log: log.Named("user")}
}

// FindOneByID returns the user without its password hash.
func (s *UserService) FindOneByID(ctx context.Context, id uint) (*models.User, error) {
	return s.findOne(ctx, "id = ?", id)
}

func (s *UserService) FindOneByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findOne(ctx, "username = ?", username)
}

func (s *UserService) findOne(ctx context.Context, cond string, arg interface{}) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Scopes(publicUserColumns).Where(cond, arg).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFoundError("User not found")
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindAll pages users; q.Search filters by username substring.
func (s *UserService) FindAll(ctx context.Context, q Query) (*Paged[models.User], error) {
	scope := func(db *gorm.DB) *gorm.DB {
		if search := strings.TrimSpace(q.Search); search != "" {
			db = db.Where(`LOWER(users.username) LIKE ? ESCAPE '\'`, likePattern(search))
		}
		return db
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, err
	}
	users := []models.User{}
	err := s.db.WithContext(ctx).
		Scopes(publicUserColumns, scope, q.paginate("users")).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return &Paged[models.User]{Items: users, Pagination: q.pagination(total)}, nil
}

func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	if in.Username == "" {
		return nil, validationError("Username is required")
	}
	if in.Role == "" {
		in.Role = models.RoleUser
	}
	if !models.ValidRole(in.Role) {
		return nil, validationError("Invalid role")
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", in.Username).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, conflictError("Username already exists")
	}

	hash, err := utils.HashPassword(in.Password)
	if errors.Is(err, utils.ErrEmptyPassword) {
		return nil, validationError("Password is required")
	}
	if err != nil {
		return nil, err
	}

	user := models.User{Username: in.Username, Password: hash, Role: in.Role}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, conflictError("Username already exists")
		}
		return nil, err
	}
	user.Password = ""
	s.log.Info("user created", zap.Uint("user_id", user.ID), zap.String("role", string(user.Role)))
	return &user, nil
}

// ChangeAvatar uploads f and points the user at it. The new object is removed
// if the row update fails; the previous one is removed once it succeeds.
func (s *UserService) ChangeAvatar(ctx context.Context, id uint, f storage.File) (*models.User, error) {
	user, err := s.FindOneByID(ctx, id)
	if err != nil {
		return nil, err
	}

	batch := newImageBatch(s.store, s.log)
	url, err := batch.upload(ctx, f, utils.ObjectKey(entityAvatar, user.Username, f.Name))
	if err != nil {
		return nil, badRequest(err, "Upload avatar failed")
	}

	err = s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("avatar", url).Error
	if err != nil {
		batch.compensate(ctx)
		return nil, badRequest(err, "Change avatar failed")
	}
	if user.Avatar != nil && *user.Avatar != "" {
		batch.discard(*user.Avatar)
	}
	batch.finalize(ctx)

	return s.FindOneByID(ctx, id)
}
