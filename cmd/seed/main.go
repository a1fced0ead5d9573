package main

import (
	"log"
	"os"
	"time"

	"github.com/freshkeep/freshkeep/internal/config"
	"github.com/freshkeep/freshkeep/internal/database"
	"github.com/freshkeep/freshkeep/internal/models"
	"github.com/freshkeep/freshkeep/internal/utils"
	"github.com/google/uuid"
)

// Seeds a demo account with sample products covering all four expiry buckets.
func main() {
	cfg := config.Load()
	database.Connect(cfg)
	database.Migrate()

	demoUsername := os.Getenv("DEMO_USERNAME")
	demoEmail := os.Getenv("DEMO_EMAIL")
	demoPassword := os.Getenv("DEMO_PASSWORD")

	if demoUsername == "" || demoEmail == "" || demoPassword == "" {
		log.Fatal("Missing environment variables: DEMO_USERNAME, DEMO_EMAIL, DEMO_PASSWORD")
	}

	var user models.User
	result := database.DB.Where("email = ?", demoEmail).First(&user)

	if result.Error == nil {
		log.Println("Demo user already exists:", user.Username)
		return
	}

	passwordHash, err := utils.HashPassword(demoPassword)
	if err != nil {
		log.Fatal("Failed to hash password:", err)
	}

	user = models.User{
		ID:           uuid.New(),
		Username:     demoUsername,
		Email:        demoEmail,
		PasswordHash: passwordHash,
	}

	if err := database.DB.Create(&user).Error; err != nil {
		log.Fatal("Failed to create demo user:", err)
	}

	today := time.Now()
	sampleProducts := []models.Product{
		{
			ProductName:       "Whole Milk",
			ProductType:       models.TypeBottle,
			Location:          "Fridge, top shelf",
			Quantity:          2,
			Category:          models.CategoryFood,
			ManufacturingDate: today.AddDate(0, 0, -10),
			ExpiryDate:        today.AddDate(0, 0, -2), // expired
		},
		{
			ProductName:       "Paracetamol 500mg",
			ProductType:       models.TypeTablet,
			Location:          "Medicine cabinet",
			Quantity:          24,
			Category:          models.CategoryMedicine,
			ManufacturingDate: today.AddDate(-1, 0, 0),
			ExpiryDate:        today.AddDate(0, 0, 2), // expiring soon
		},
		{
			ProductName:       "Greek Yogurt",
			ProductType:       models.TypeJar,
			Location:          "Fridge, middle shelf",
			Quantity:          4,
			Category:          models.CategoryFood,
			ManufacturingDate: today.AddDate(0, 0, -5),
			ExpiryDate:        today.AddDate(0, 0, 6), // expiring this week
		},
		{
			ProductName:       "Hand Cream",
			ProductType:       models.TypeTube,
			Location:          "Bathroom drawer",
			Quantity:          1,
			Category:          models.CategoryCosmetics,
			ManufacturingDate: today.AddDate(0, -6, 0),
			ExpiryDate:        today.AddDate(1, 0, 0), // fresh
		},
	}

	for i := range sampleProducts {
		sampleProducts[i].ID = uuid.New()
		sampleProducts[i].UserID = user.ID

		if err := database.DB.Create(&sampleProducts[i]).Error; err != nil {
			log.Fatal("Failed to create sample product:", err)
		}
	}

	log.Println("Demo user created successfully!")
	log.Println("   Username:", user.Username)
	log.Println("   Email:", user.Email)
	log.Printf("   Products: %d", len(sampleProducts))
}
