package service

import (
	"errors"

	"bcs_edu_backend/internal/repository"
	"bcs_edu_backend/internal/util"

	"gorm.io/gorm"
)

// ModuleService serves the standalone module hierarchy (the e-textbook tree).
// The whole published set is fetched in one query and shaped in memory with
// the tree builder; there is no per-level refetching.
type ModuleService struct {
	ModuleRepo *repository.ModuleRepository
	CourseRepo *repository.CourseRepository
}

func NewModuleService(moduleRepo *repository.ModuleRepository, courseRepo *repository.CourseRepository) *ModuleService {
	return &ModuleService{ModuleRepo: moduleRepo, CourseRepo: courseRepo}
}

// GetTree returns the full published forest with numbering applied.
func (s *ModuleService) GetTree() ([]*ModuleTreeNode, error) {
	modules, err := s.ModuleRepo.FindAllPublished()
	if err != nil {
		return nil, err
	}

	tree := BuildModuleTree(modules, nil, 0)
	ApplyNumbering(tree, GenerateModuleNumbering(tree, ""))
	return tree, nil
}

type ModuleDetail struct {
	Node      *ModuleTreeNode `json:"module"`
	Ancestors []uint          `json:"ancestorIds"`
}

// GetBySlug returns one module's subtree plus its ancestor path for sidebar
// expansion.
func (s *ModuleService) GetBySlug(slug string) (*ModuleDetail, error) {
	module, err := s.ModuleRepo.FindPublishedBySlug(slug)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrModuleNotFound
	}
	if err != nil {
		return nil, err
	}

	all, err := s.ModuleRepo.FindAllPublished()
	if err != nil {
		return nil, err
	}

	tree := BuildModuleTree(all, nil, 0)
	ApplyNumbering(tree, GenerateModuleNumbering(tree, ""))

	node := FindNodeInTree(tree, module.ID)
	if node == nil {
		// Published but orphaned by a dangling parent reference.
		return nil, util.ErrModuleNotFound
	}

	return &ModuleDetail{
		Node:      node,
		Ancestors: AncestorIDs(tree, module.ID),
	}, nil
}

// UpdatePrerequisites replaces a module's prerequisite edge list. Unlike the
// read path, the write path validates: every referenced id must exist, a
// module cannot require itself, and the new edge set must stay acyclic.
func (s *ModuleService) UpdatePrerequisites(moduleID uint, prereqIDs []uint) error {
	if _, err := s.ModuleRepo.FindByID(moduleID); errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrModuleNotFound
	} else if err != nil {
		return err
	}

	for _, id := range prereqIDs {
		if id == moduleID {
			return util.ErrSelfPrerequisite
		}
	}

	referenced, err := s.ModuleRepo.FindByIDs(prereqIDs)
	if err != nil {
		return err
	}
	if len(referenced) != len(uniqueIDs(prereqIDs)) {
		return util.ErrUnknownPrereq
	}

	all, err := s.ModuleRepo.FindAllPublished()
	if err != nil {
		return err
	}
	edges := make(map[uint][]uint, len(all)+1)
	for _, m := range all {
		edges[m.ID] = m.PrerequisiteIDs
	}
	edges[moduleID] = prereqIDs

	if hasCycle(edges, moduleID) {
		return util.ErrPrereqCycle
	}

	return s.ModuleRepo.UpdatePrerequisites(moduleID, prereqIDs)
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	var out []uint
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// hasCycle walks prerequisite edges depth-first from start looking for a way
// back to start.
func hasCycle(edges map[uint][]uint, start uint) bool {
	visited := make(map[uint]bool)

	var walk func(id uint) bool
	walk = func(id uint) bool {
		if visited[id] {
			return false
		}
		visited[id] = true
		for _, dep := range edges[id] {
			if dep == start {
				return true
			}
			if walk(dep) {
				return true
			}
		}
		return false
	}

	for _, dep := range edges[start] {
		if dep == start || walk(dep) {
			return true
		}
	}
	return false
}
