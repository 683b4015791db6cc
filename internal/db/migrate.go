package db

import (
	"fmt"

	"github.com/demostack/usersapi/internal/models"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Migrate runs database migrations for the current dialect.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}
	if errAutoMigrate := conn.AutoMigrate(&models.User{}); errAutoMigrate != nil {
		return fmt.Errorf("db: migrate: %w", errAutoMigrate)
	}
	return nil
}

// seedUsers are the demo accounts created on first boot.
var seedUsers = []models.User{
	{Name: "John Doe", Email: "john.doe@example.com", Role: models.RoleAdmin, Bio: "System administrator with 10+ years of experience."},
	{Name: "Jane Smith", Email: "jane.smith@example.com", Role: models.RoleManager, Bio: "Project manager specializing in agile methodologies."},
	{Name: "Mike Johnson", Email: "mike.johnson@example.com", Role: models.RoleUser, Bio: "Frontend developer passionate about React and UX design."},
	{Name: "Sarah Wilson", Email: "sarah.wilson@example.com", Role: models.RoleUser, Bio: "Data scientist working on machine learning projects."},
	{Name: "David Brown", Email: "david.brown@example.com", Role: models.RoleManager, Bio: "DevOps engineer focusing on cloud infrastructure."},
	{Name: "Emily Davis", Email: "emily.davis@example.com", Role: models.RoleUser, Bio: "Backend developer with expertise in Python and APIs."},
	{Name: "Alex Turner", Email: "alex.turner@example.com", Role: models.RoleUser, Bio: "Mobile app developer creating cross-platform solutions."},
	{Name: "Lisa Garcia", Email: "lisa.garcia@example.com", Role: models.RoleAdmin, Bio: "Security specialist ensuring application safety."},
}

// Seed inserts the sample users when the table is empty.
func Seed(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}
	var count int64
	if errCount := conn.Model(&models.User{}).Count(&count).Error; errCount != nil {
		return fmt.Errorf("db: count users: %w", errCount)
	}
	if count > 0 {
		log.Infof("database already contains %d users", count)
		return nil
	}
	users := make([]models.User, len(seedUsers))
	copy(users, seedUsers)
	if errCreate := conn.Create(&users).Error; errCreate != nil {
		return fmt.Errorf("db: seed users: %w", errCreate)
	}
	log.Infof("seeded database with %d users", len(users))
	return nil
}
