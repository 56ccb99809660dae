package database

import (
	"log"
	"log/slog"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/dandanshan/meal-selection-app/model"
)

var DB *gorm.DB

func newGormLogger() gormLogger.Interface {
	return gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)
}

// InitDatabase connects to Postgres when DATABASE_DSN is set and falls
// back to a local SQLite file otherwise, then migrates and seeds.
func InitDatabase() {
	var err error

	cfg := &gorm.Config{
		Logger: newGormLogger(),
		// History keeps a dangling restaurant id after a catalog
		// delete; payment/history delete order is enforced in code.
		DisableForeignKeyConstraintWhenMigrating: true,
	}

	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		DB, err = gorm.Open(postgres.Open(dsn), cfg)
	} else {
		path := os.Getenv("SQLITE_PATH")
		if path == "" {
			path = "lunch.db"
		}
		DB, err = gorm.Open(sqlite.Open(path+"?cache=shared"), cfg)
	}
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		log.Fatalf("Failed to get database handle: %v", err)
	}
	if err := sqlDB.Ping(); err != nil {
		log.Fatalf("Database is not reachable: %v", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	if err := SeedIfEmpty(DB); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	slog.Info("database ready")
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Restaurant{},
		&model.History{},
		&model.Payment{},
		&model.Colleague{},
	)
}

// SeedIfEmpty creates a few sample restaurants on a fresh database so
// the selection screen has something to draw from.
func SeedIfEmpty(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Restaurant{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	everyDay := model.BusinessDays{
		"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
	}
	samples := []model.Restaurant{
		{
			Name:            "麥當勞",
			Type:            "速食",
			SuggestedPeople: model.PartySize{Spec: "4", Legacy: true},
			Phone:           "02-2345-6789",
			Address:         "台北市信義區信義路五段7號",
			BusinessDays:    everyDay,
			Distance:        0.5,
		},
		{
			Name:            "肯德基",
			Type:            "速食",
			SuggestedPeople: model.PartySize{Spec: "4", Legacy: true},
			Phone:           "02-2345-6790",
			Address:         "台北市信義區松高路12號",
			BusinessDays:    everyDay,
			Distance:        0.8,
		},
		{
			Name:            "星巴克",
			Type:            "咖啡",
			SuggestedPeople: model.PartySize{Spec: "2", Legacy: true},
			Phone:           "02-2345-6791",
			Address:         "台北市信義區信義路五段8號",
			BusinessDays:    everyDay,
			Distance:        0.3,
		},
	}
	if err := db.Create(&samples).Error; err != nil {
		return err
	}
	slog.Info("sample restaurants created", "count", len(samples))
	return nil
}
