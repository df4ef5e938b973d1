package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"bcs_edu_backend/internal/repository"
	"bcs_edu_backend/internal/util"
)

func newModuleService(db *gorm.DB) *ModuleService {
	return NewModuleService(
		repository.NewModuleRepository(db),
		repository.NewCourseRepository(db),
	)
}

func TestGetTree_NumbersPublishedForest(t *testing.T) {
	db := setupTestDB(t)
	svc := newModuleService(db)

	root := seedModule(t, db, "basics", 10, nil)
	child := seedModule(t, db, "variables", 10, nil)
	child.ParentModuleID = &root.ID
	require.NoError(t, db.Save(child).Error)

	tree, err := svc.GetTree()
	require.NoError(t, err)

	require.Len(t, tree, 1)
	assert.Equal(t, "1", tree[0].Numbering)
	require.Len(t, tree[0].Children, 1)
	assert.Equal(t, "1.1", tree[0].Children[0].Numbering)
}

func TestGetBySlug(t *testing.T) {
	db := setupTestDB(t)
	svc := newModuleService(db)

	root := seedModule(t, db, "basics", 10, nil)
	child := seedModule(t, db, "variables", 10, nil)
	child.ParentModuleID = &root.ID
	require.NoError(t, db.Save(child).Error)

	detail, err := svc.GetBySlug("variables")
	require.NoError(t, err)
	assert.Equal(t, child.ID, detail.Node.ID)
	require.Len(t, detail.Ancestors, 1)
	assert.Equal(t, root.ID, detail.Ancestors[0])

	_, err = svc.GetBySlug("missing")
	assert.True(t, errors.Is(err, util.ErrModuleNotFound))
}

func TestGetBySlug_OrphanIsNotFound(t *testing.T) {
	db := setupTestDB(t)
	svc := newModuleService(db)

	dangling := uint(999)
	orphan := seedModule(t, db, "orphan", 10, nil)
	orphan.ParentModuleID = &dangling
	require.NoError(t, db.Save(orphan).Error)

	_, err := svc.GetBySlug("orphan")
	assert.True(t, errors.Is(err, util.ErrModuleNotFound))
}

func TestUpdatePrerequisites_Valid(t *testing.T) {
	db := setupTestDB(t)
	svc := newModuleService(db)

	m1 := seedModule(t, db, "a", 10, nil)
	m2 := seedModule(t, db, "b", 10, nil)

	require.NoError(t, svc.UpdatePrerequisites(m2.ID, []uint{m1.ID}))

	reloaded, err := repository.NewModuleRepository(db).FindByID(m2.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{m1.ID}, reloaded.PrerequisiteIDs)
}

func TestUpdatePrerequisites_Rejections(t *testing.T) {
	db := setupTestDB(t)
	svc := newModuleService(db)

	m1 := seedModule(t, db, "a", 10, nil)
	m2 := seedModule(t, db, "b", 10, nil)
	m3 := seedModule(t, db, "c", 10, nil)

	err := svc.UpdatePrerequisites(999, []uint{m1.ID})
	assert.True(t, errors.Is(err, util.ErrModuleNotFound))

	err = svc.UpdatePrerequisites(m1.ID, []uint{m1.ID})
	assert.True(t, errors.Is(err, util.ErrSelfPrerequisite))

	err = svc.UpdatePrerequisites(m1.ID, []uint{777})
	assert.True(t, errors.Is(err, util.ErrUnknownPrereq))

	// a -> b -> c, then closing the loop c -> a must fail.
	require.NoError(t, svc.UpdatePrerequisites(m2.ID, []uint{m1.ID}))
	require.NoError(t, svc.UpdatePrerequisites(m3.ID, []uint{m2.ID}))
	err = svc.UpdatePrerequisites(m1.ID, []uint{m3.ID})
	assert.True(t, errors.Is(err, util.ErrPrereqCycle))
}
