package database

import (
	"fmt"

	"github.com/domestiq/domestiq_api/models"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func ConnectDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		PrepareStmt:                              false,
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
		Logger:                                   logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	log.Println("✅ Database connected successfully")
	return db, nil
}

// activeTransactionIndex closes the check-then-insert race on payment initialization.
const activeTransactionIndex = `CREATE UNIQUE INDEX IF NOT EXISTS ux_transactions_active_booking
	ON transactions (booking_id)
	WHERE status IN ('pending', 'processing', 'completed')`

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.WorkerProfile{},
		&models.Booking{},
		&models.Transaction{},
		&models.RevenueLedgerEntry{},
		&models.WorkerPayout{},
		&models.Notification{},
		&models.PushSubscription{},
		&models.OutboxEvent{},
		&models.WebhookEvent{},
		&models.ConsentRecord{},
		&models.IncomeStatement{},
		&models.Review{},
		&models.VerificationDocument{},
	)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if err := db.Exec(activeTransactionIndex).Error; err != nil {
		return fmt.Errorf("create active transaction index: %w", err)
	}
	log.Println("✅ Database migration successful")
	return nil
}

func SeedAdmin(db *gorm.DB, email, password, fullName string) error {
	if email == "" || password == "" {
		log.Println("Admin credentials not configured, skipping admin seed.")
		return nil
	}

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return fmt.Errorf("check admin user: %w", err)
	}
	if count > 0 {
		log.Println("Admin user already exists.")
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	admin := models.User{
		FullName: fullName,
		Email:    email,
		Password: string(hashedPassword),
		Role:     models.RoleAdmin,
		IsActive: true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("seed admin user: %w", err)
	}

	log.Println("✅ Admin user seeded successfully")
	return nil
}
