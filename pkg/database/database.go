package database

import (
	"fmt"
	"log"

	"bcs_edu_backend/internal/config"
	"bcs_edu_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	err = db.AutoMigrate(
		&model.User{},
		&model.Module{},
		&model.Course{},
		&model.CourseModule{},
		&model.ModuleProgress{},
		&model.CourseTracking{},
		&model.GamificationStats{},
		&model.LearningSession{},
		&model.Achievement{},
		&model.UserAchievement{},
	)

	if err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	seedAchievements(db)

	return db, nil
}

// seedAchievements inserts the default badge catalogue when the table is empty.
func seedAchievements(db *gorm.DB) {
	var count int64
	db.Model(&model.Achievement{}).Count(&count)
	if count > 0 {
		return
	}

	defaults := []model.Achievement{
		{Code: "first_steps", Title: "First Steps", Description: "Complete your first module", Icon: "footprints", BadgeColor: "green", XPReward: 25, CriteriaType: model.CriteriaModulesCompleted, Threshold: 1},
		{Code: "getting_serious", Title: "Getting Serious", Description: "Complete 5 modules", Icon: "flame", BadgeColor: "orange", XPReward: 50, CriteriaType: model.CriteriaModulesCompleted, Threshold: 5},
		{Code: "module_master", Title: "Module Master", Description: "Complete 25 modules", Icon: "crown", BadgeColor: "gold", XPReward: 200, CriteriaType: model.CriteriaModulesCompleted, Threshold: 25},
		{Code: "course_graduate", Title: "Course Graduate", Description: "Finish your first course", Icon: "graduation-cap", BadgeColor: "blue", XPReward: 100, CriteriaType: model.CriteriaCoursesCompleted, Threshold: 1},
		{Code: "scholar", Title: "Scholar", Description: "Finish 3 courses", Icon: "book", BadgeColor: "purple", XPReward: 300, CriteriaType: model.CriteriaCoursesCompleted, Threshold: 3},
		{Code: "week_warrior", Title: "Week Warrior", Description: "Keep a 7 day learning streak", Icon: "calendar", BadgeColor: "red", XPReward: 75, CriteriaType: model.CriteriaStreak, Threshold: 7},
		{Code: "unstoppable", Title: "Unstoppable", Description: "Keep a 30 day learning streak", Icon: "rocket", BadgeColor: "gold", XPReward: 500, CriteriaType: model.CriteriaStreak, Threshold: 30},
		{Code: "deep_diver", Title: "Deep Diver", Description: "Complete an advanced module", Icon: "anchor", BadgeColor: "teal", XPReward: 100, CriteriaType: model.CriteriaModuleDifficulty, Threshold: 1, Difficulty: "advanced"},
	}
	for _, a := range defaults {
		db.Create(&a)
	}
}
