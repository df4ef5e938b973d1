package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"bcs_edu_backend/internal/model"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(
		&model.Module{},
		&model.ModuleProgress{},
		&model.CourseTracking{},
		&model.GamificationStats{},
		&model.LearningSession{},
	); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func completedRecord(userID, moduleID uint, courseID *uint) *model.ModuleProgress {
	now := time.Now()
	return &model.ModuleProgress{
		UserID:      userID,
		ModuleID:    moduleID,
		CourseID:    courseID,
		Status:      model.ProgressCompleted,
		StartedAt:   now,
		CompletedAt: &now,
	}
}

func TestProgressRepository_KeyedByCourseContext(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProgressRepository(db)

	courseID := uint(3)

	// The same (user, module) can carry one record per context: one for the
	// course and one standalone.
	if err := repo.Create(completedRecord(1, 10, &courseID)); err != nil {
		t.Fatalf("failed to create course record: %v", err)
	}
	if err := repo.Create(completedRecord(1, 10, nil)); err != nil {
		t.Fatalf("failed to create standalone record: %v", err)
	}

	scoped, err := repo.FindByKey(1, 10, &courseID)
	if err != nil {
		t.Fatalf("course record not found: %v", err)
	}
	if scoped.CourseKey != courseID {
		t.Errorf("expected course key %d, got %d", courseID, scoped.CourseKey)
	}

	standalone, err := repo.FindByKey(1, 10, nil)
	if err != nil {
		t.Fatalf("standalone record not found: %v", err)
	}
	if standalone.CourseID != nil || standalone.CourseKey != 0 {
		t.Errorf("standalone record has course context: %v / %d", standalone.CourseID, standalone.CourseKey)
	}
}

func TestProgressRepository_DuplicateKeyRejected(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProgressRepository(db)

	courseID := uint(3)
	if err := repo.Create(completedRecord(1, 10, &courseID)); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	if err := repo.Create(completedRecord(1, 10, &courseID)); err == nil {
		t.Fatalf("expected unique index violation for duplicate triple")
	}
}

func TestProgressRepository_DeleteByKeyLeavesOtherContexts(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProgressRepository(db)

	courseID := uint(3)
	if err := repo.Create(completedRecord(1, 10, &courseID)); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := repo.Create(completedRecord(1, 10, nil)); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := repo.DeleteByKey(1, 10, &courseID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if _, err := repo.FindByKey(1, 10, &courseID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("course record should be gone, got %v", err)
	}
	if _, err := repo.FindByKey(1, 10, nil); err != nil {
		t.Errorf("standalone record should survive, got %v", err)
	}
}

func TestProgressRepository_DeleteAllForModule(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProgressRepository(db)

	courseID := uint(3)
	if err := repo.Create(completedRecord(1, 10, &courseID)); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := repo.Create(completedRecord(1, 10, nil)); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := repo.Create(completedRecord(1, 11, nil)); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := repo.DeleteAllForModule(1, 10); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	var count int64
	db.Model(&model.ModuleProgress{}).Where("user_id = ?", 1).Count(&count)
	if count != 1 {
		t.Errorf("expected only the unrelated record to survive, got %d", count)
	}
}

func TestProgressRepository_CompletedModuleIDsScopedToContext(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProgressRepository(db)

	courseID := uint(3)
	if err := repo.Create(completedRecord(1, 10, &courseID)); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := repo.Create(completedRecord(1, 11, nil)); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	inCourse, err := repo.CompletedModuleIDs(1, &courseID)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if !inCourse[10] || inCourse[11] {
		t.Errorf("course scope wrong: %v", inCourse)
	}

	standalone, err := repo.CompletedModuleIDs(1, nil)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if standalone[10] || !standalone[11] {
		t.Errorf("standalone scope wrong: %v", standalone)
	}
}

func TestSessionRepository_BumpCreatesThenIncrements(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSessionRepository(db)

	// Fixed mid-day moment so no bump crosses midnight.
	now := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	if err := repo.RecordCompletion(1, now); err != nil {
		t.Fatalf("first record failed: %v", err)
	}
	if err := repo.RecordCompletion(1, now.Add(time.Hour)); err != nil {
		t.Fatalf("second record failed: %v", err)
	}
	if err := repo.RecordView(1, now.Add(2*time.Hour)); err != nil {
		t.Fatalf("view record failed: %v", err)
	}

	session, err := repo.FindByUserAndDate(1, now)
	if err != nil {
		t.Fatalf("session not found: %v", err)
	}
	if session.ModulesCompleted != 2 {
		t.Errorf("expected 2 completions, got %d", session.ModulesCompleted)
	}
	if session.ModulesViewed != 1 {
		t.Errorf("expected 1 view, got %d", session.ModulesViewed)
	}
}

func TestGamificationRepository_AddXPIsIncremental(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGamificationRepository(db)

	if _, err := repo.FindOrCreate(1); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := repo.AddXP(1, 50); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := repo.AddXP(1, 25); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	stats, err := repo.FindByUser(1)
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if stats.TotalXP != 75 {
		t.Errorf("expected 75 XP, got %d", stats.TotalXP)
	}
}
