package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"github.com/vnkhanh/bkhome-server/models"
	"github.com/vnkhanh/bkhome-server/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const fakeBase = "https://cdn.test/bucket/"

var errUploadFailed = errors.New("upload failed")

// fakeStorage keeps objects in memory. failUploadAt makes the n-th Upload
// call (1-based) fail and panicUploadAt makes it panic; failDelete makes
// every Delete fail.
type fakeStorage struct {
	mu            sync.Mutex
	objects       map[string]storage.File
	uploads       int
	failUploadAt  int
	panicUploadAt int
	failDelete    bool
	deleted       []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string]storage.File{}}
}

func (f *fakeStorage) Upload(_ context.Context, file storage.File, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads++
	if f.panicUploadAt > 0 && f.uploads == f.panicUploadAt {
		panic("storage client panicked")
	}
	if f.failUploadAt > 0 && f.uploads == f.failUploadAt {
		return "", errUploadFailed
	}
	f.objects[key] = file
	return fakeBase + key, nil
}

func (f *fakeStorage) Delete(_ context.Context, urlOrKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := f.Key(urlOrKey)
	f.deleted = append(f.deleted, key)
	if f.failDelete {
		return errors.New("delete failed")
	}
	delete(f.objects, key)
	return nil
}

// Key parses like the real backends: query and fragment are not part of the key.
func (f *fakeStorage) Key(url string) string {
	key := strings.TrimPrefix(url, fakeBase)
	if i := strings.IndexAny(key, "?#"); i >= 0 {
		key = key[:i]
	}
	return key
}

func (f *fakeStorage) has(url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[f.Key(url)]
	return ok
}

func (f *fakeStorage) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

type testEnv struct {
	db      *gorm.DB
	store   *fakeStorage
	users   *UserService
	rooms   *RoomService
	reviews *ReviewService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	store := newFakeStorage()
	log := zap.NewNop()
	users := NewUserService(db, store, log)
	return &testEnv{
		db:      db,
		store:   store,
		users:   users,
		rooms:   NewRoomService(db, store, users, DefaultTxOptions, log),
		reviews: NewReviewService(db, store, users, DefaultTxOptions, log),
	}
}

func (e *testEnv) user(t *testing.T, name string, role models.Role) *models.User {
	t.Helper()
	u, err := e.users.Create(context.Background(), CreateUserInput{Username: name, Password: "secret", Role: role})
	require.NoError(t, err)
	return u
}

func (e *testEnv) room(t *testing.T, ownerID uint, images ...storage.File) *models.Room {
	t.Helper()
	r, err := e.rooms.Create(context.Background(), roomInput(ownerID), images)
	require.NoError(t, err)
	return r
}

func (e *testEnv) rowCount(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(model).Count(&n).Error)
	return n
}

func roomInput(ownerID uint) CreateRoomInput {
	return CreateRoomInput{
		OwnerID:          ownerID,
		Name:             "Phong tro Di An",
		Address:          "12 Tran Hung Dao",
		Type:             models.RoomTypePhongTro,
		Area:             20,
		DistanceToSchool: 1.5,
		Price:            2_000_000,
		Attribute: AttributeInput{
			ElectricityPrice: 3500,
			WaterPrice:       20000,
			Description:      "near campus",
			WifiInternet:     true,
		},
	}
}

func images(names ...string) []storage.File {
	files := make([]storage.File, 0, len(names))
	for _, n := range names {
		files = append(files, storage.File{Name: n, ContentType: "image/png", Data: []byte("png:" + n)})
	}
	return files
}

func numbered(prefix string, n int) []string {
	names := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		names = append(names, fmt.Sprintf("%s%d.png", prefix, i))
	}
	return names
}

func itoa(id uint) string {
	return fmt.Sprint(id)
}
