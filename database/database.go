package database

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"punthub/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Connect() {
	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		host := os.Getenv("DB_HOST")
		port := os.Getenv("DB_PORT")
		user := os.Getenv("DB_USER")
		pass := os.Getenv("DB_PASSWORD")
		name := os.Getenv("DB_NAME")
		sslmode := os.Getenv("DB_SSLMODE")

		dsn = fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			host, user, pass, name, port, sslmode,
		)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	DB = db

	autoMigrate, _ := strconv.ParseBool(os.Getenv("DB_AUTO_MIGRATE"))
	if autoMigrate {
		if err := DB.AutoMigrate(
			&models.User{},
			&models.Session{},
			&models.Bet{},
			&models.Transaction{},
			&models.GameProvider{},
		); err != nil {
			log.Fatal("failed to auto-migrate database:", err)
		}
	}
}
