package bootstrap

import (
	"log"
	"os"

	"anoa.com/betpoints/internal/model"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Role{},
		&model.User{},
		&model.PointType{},
		&model.UserBalance{},
		&model.Transaction{},
		&model.Rank{},
		&model.UserRank{},
		&model.EarningRule{},
		&model.Achievement{},
		&model.UserAchievement{},
		&model.Prediction{},
		&model.Bet{},
		&model.UserStats{},
	)
}

func SeedRoles(db *gorm.DB) error {
	defaultRoles := []model.Role{
		{Name: "admin", Description: "Administrator"},
		{Name: "player", Description: "Regular player"},
	}

	for _, role := range defaultRoles {
		var count int64
		if err := db.Model(&model.Role{}).
			Where("name = ?", role.Name).
			Count(&count).Error; err != nil {
			return err
		}

		if count == 0 {
			if err := db.Create(&role).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

func SeedAdminUser(db *gorm.DB) error {
	var adminRole model.Role
	if err := db.Where("name = ?", "admin").First(&adminRole).Error; err != nil {
		return err
	}

	email := os.Getenv("ADMIN_EMAIL")
	if email == "" {
		email = "admin@betpoints.local"
	}

	var count int64
	if err := db.Model(&model.User{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		return nil
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
	}

	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	adminUser := model.User{
		Username:     "admin",
		Email:        email,
		PasswordHash: string(hashedPasswordBytes),
		RoleID:       &adminRole.ID,
	}

	if err := db.Create(&adminUser).Error; err != nil {
		return err
	}

	log.Printf("admin user seeded (%s)", email)
	return nil
}

// SeedPointTypes creates the two built-in currencies. Betcoins are the
// spendable currency; experience only accumulates and drives ranks.
func SeedPointTypes(db *gorm.DB) error {
	defaults := []model.PointType{
		{Slug: model.PointTypeBetcoins, Name: "Betcoins", DecimalPlaces: 0, Active: true},
		{Slug: model.PointTypeExperience, Name: "Experience", DecimalPlaces: 0, Active: true},
	}

	for _, pt := range defaults {
		var count int64
		if err := db.Model(&model.PointType{}).
			Where("slug = ?", pt.Slug).
			Count(&count).Error; err != nil {
			return err
		}

		if count == 0 {
			if err := db.Create(&pt).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

func SeedRanks(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Rank{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	ladder := []model.Rank{
		{Slug: "rookie", Name: "Rookie", BadgeColor: "#9ca3af", PointsRequired: 0, OrderPosition: 1},
		{Slug: "amateur", Name: "Amateur", BadgeColor: "#22c55e", PointsRequired: 100, OrderPosition: 2},
		{Slug: "pro", Name: "Pro", BadgeColor: "#3b82f6", PointsRequired: 500, OrderPosition: 3},
		{Slug: "veteran", Name: "Veteran", BadgeColor: "#a855f7", PointsRequired: 2000, OrderPosition: 4},
		{Slug: "legend", Name: "Legend", BadgeColor: "#f59e0b", PointsRequired: 10000, OrderPosition: 5},
	}

	return db.Create(&ladder).Error
}

func SeedEarningRules(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.EarningRule{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	one := 1
	rules := []model.EarningRule{
		{
			Name:           "Welcome Bonus",
			TriggerAction:  model.TriggerUserRegistered,
			PointTypeSlug:  model.PointTypeBetcoins,
			PointsAwarded:  100,
			MaxTotalAwards: &one,
			Priority:       1,
			Active:         true,
		},
		{
			Name:           "Daily Login",
			TriggerAction:  model.TriggerUserLogin,
			PointTypeSlug:  model.PointTypeBetcoins,
			PointsAwarded:  10,
			MaxDailyAwards: &one,
			Priority:       1,
			Active:         true,
		},
		{
			Name:           "Daily Login XP",
			TriggerAction:  model.TriggerUserLogin,
			PointTypeSlug:  model.PointTypeExperience,
			PointsAwarded:  5,
			MaxDailyAwards: &one,
			Priority:       2,
			Active:         true,
		},
		{
			Name:          "Bet Placed XP",
			TriggerAction: model.TriggerBetPlaced,
			PointTypeSlug: model.PointTypeExperience,
			PointsAwarded: 2,
			Priority:      1,
			Active:        true,
		},
		{
			Name:          "Bet Won XP",
			TriggerAction: model.TriggerBetWon,
			PointTypeSlug: model.PointTypeExperience,
			PointsAwarded: 10,
			Priority:      1,
			Active:        true,
		},
	}

	return db.Create(&rules).Error
}

func SeedAchievements(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Achievement{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	achievements := []model.Achievement{
		{
			Slug:          "first-bet",
			Name:          "First Blood",
			Description:   "Place your first bet",
			ConditionType: model.ConditionBetsPlaced,
			Threshold:     1,
			PointsReward:  25,
			RewardType:    model.PointTypeBetcoins,
			Active:        true,
		},
		{
			Slug:          "ten-wins",
			Name:          "Sharp Shooter",
			Description:   "Win 10 bets",
			ConditionType: model.ConditionBetsWon,
			Threshold:     10,
			PointsReward:  100,
			RewardType:    model.PointTypeBetcoins,
			Active:        true,
		},
		{
			Slug:          "hot-streak",
			Name:          "Hot Streak",
			Description:   "Win 5 bets in a row",
			ConditionType: model.ConditionWinStreak,
			Threshold:     5,
			PointsReward:  250,
			RewardType:    model.PointTypeBetcoins,
			IsSecret:      true,
			Active:        true,
		},
		{
			Slug:          "high-roller",
			Name:          "High Roller",
			Description:   "Wager 10000 betcoins in total",
			ConditionType: model.ConditionTotalWagered,
			Threshold:     10000,
			PointsReward:  500,
			RewardType:    model.PointTypeBetcoins,
			Active:        true,
		},
		{
			Slug:          "seasoned",
			Name:          "Seasoned",
			Description:   "Reach 2000 experience",
			ConditionType: model.ConditionExperience,
			Threshold:     2000,
			PointsReward:  200,
			RewardType:    model.PointTypeBetcoins,
			Active:        true,
		},
	}

	return db.Create(&achievements).Error
}
