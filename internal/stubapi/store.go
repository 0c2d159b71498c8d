package stubapi

import (
	"context"
	"errors"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/advocaid/auth-client/internal/configs"
	"github.com/advocaid/auth-client/internal/model"
)

var ErrUserNotFound = errors.New("user not found")

// UserRecord is the stub's account row. It mirrors the production user
// table closely enough for the client's flows: verification timestamp,
// payment identifier and the business profile columns.
type UserRecord struct {
	ID                int64   `gorm:"primaryKey"`
	Name              string  `gorm:"size:255"`
	Email             string  `gorm:"size:255;uniqueIndex"`
	PasswordHash      string  `gorm:"size:255"`
	EmailVerifiedAt   *time.Time
	UpiID             *string `gorm:"size:64"`
	ProfileType       string  `gorm:"size:16;default:personal"`
	LawFirmName       string  `gorm:"size:255"`
	LicenseNumber     string  `gorm:"size:64"`
	PracticeAreas     string  `gorm:"size:255"`
	YearsOfExperience int
	BarAssociation    string `gorm:"size:255"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (UserRecord) TableName() string { return "users" }

// Public converts the row to the wire-level user shape.
func (r *UserRecord) Public() *model.User {
	return &model.User{
		ID:                r.ID,
		Name:              r.Name,
		Email:             r.Email,
		EmailVerifiedAt:   r.EmailVerifiedAt,
		UpiID:             r.UpiID,
		ProfileType:       model.ProfileType(r.ProfileType),
		LawFirmName:       r.LawFirmName,
		LicenseNumber:     r.LicenseNumber,
		PracticeAreas:     r.PracticeAreas,
		YearsOfExperience: r.YearsOfExperience,
		BarAssociation:    r.BarAssociation,
	}
}

type UserStore struct {
	db *gorm.DB
}

// OpenDatabase dials the configured driver: sqlite for dev and tests,
// mysql for a deployed stub.
func OpenDatabase(cfg *configs.Config) (*UserStore, error) {
	var dialector gorm.Dialector
	switch cfg.Stub.Driver {
	case "mysql":
		dialector = mysql.Open(cfg.Stub.MySQLDSN)
	default:
		dialector = sqlite.Open(cfg.Stub.SQLiteDSN)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&UserRecord{}); err != nil {
		return nil, err
	}

	return &UserStore{db: db}, nil
}

func (s *UserStore) Create(ctx context.Context, record *UserRecord) error {
	return s.db.WithContext(ctx).Create(record).Error
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*UserRecord, error) {
	var record UserRecord
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *UserStore) GetByID(ctx context.Context, id int64) (*UserRecord, error) {
	var record UserRecord
	err := s.db.WithContext(ctx).First(&record, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *UserStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&UserRecord{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (s *UserStore) MarkEmailVerified(ctx context.Context, id int64) error {
	now := time.Now().UTC()
	return s.db.WithContext(ctx).Model(&UserRecord{}).
		Where("id = ?", id).
		Update("email_verified_at", &now).Error
}

func (s *UserStore) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	return s.db.WithContext(ctx).Model(&UserRecord{}).
		Where("id = ?", id).
		Update("password_hash", passwordHash).Error
}

func (s *UserStore) UpdateUpiID(ctx context.Context, id int64, upiID string) error {
	return s.db.WithContext(ctx).Model(&UserRecord{}).
		Where("id = ?", id).
		Update("upi_id", &upiID).Error
}
