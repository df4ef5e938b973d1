package service

// NodeStatus is the per-node view computed for one learner over a progression
// graph. The quest map serializes StatusActive as "active" and the curriculum
// map as "in_progress"; the resolution logic is the same.
type NodeStatus string

const (
	StatusLocked    NodeStatus = "locked"
	StatusAvailable NodeStatus = "available"
	StatusActive    NodeStatus = "active"
	StatusCompleted NodeStatus = "completed"

	// StatusViewable is the degraded single status shown to unauthenticated
	// or unenrolled viewers. It bypasses resolution entirely.
	StatusViewable NodeStatus = "viewable"
)

// ResolveStatus computes one node's status from its direct prerequisites and
// the learner's completed set. Priority is strict:
//
//  1. completed membership wins over everything, including unsatisfied
//     prerequisites
//  2. any prerequisite missing from the completed set locks the node; an
//     empty prerequisite list never locks
//  3. a started node is active
//  4. otherwise available
//
// The function is graph-local: it never walks beyond direct prerequisites.
// What counts as "started" differs between call sites (an in_progress record
// for modules, a non-zero started_at for courses), so callers supply the
// predicate. A prerequisite id with no matching node is simply never in the
// completed set, which leaves the dependent locked.
func ResolveStatus(nodeID uint, prereqs []uint, completed map[uint]bool, started func(uint) bool) NodeStatus {
	if completed[nodeID] {
		return StatusCompleted
	}

	for _, prereqID := range prereqs {
		if !completed[prereqID] {
			return StatusLocked
		}
	}

	if started != nil && started(nodeID) {
		return StatusActive
	}

	return StatusAvailable
}

// NewlyUnlocked reports which direct dependents of justCompletedID became
// satisfiable, scanning one hop only: a dependent qualifies iff it has at
// least one prerequisite, lists the just-completed node among them, is not
// itself completed, and every one of its prerequisites is now complete.
// Dependents further down the chain are never reported even when transitively
// reachable.
func NewlyUnlocked(nodes []uint, prereqsOf map[uint][]uint, justCompletedID uint, completed map[uint]bool) []uint {
	var unlocked []uint
	for _, id := range nodes {
		prereqs := prereqsOf[id]
		if len(prereqs) == 0 {
			continue
		}
		if completed[id] {
			continue
		}
		dependsOnCompleted := false
		satisfied := true
		for _, prereqID := range prereqs {
			if prereqID == justCompletedID {
				dependsOnCompleted = true
			}
			if !completed[prereqID] {
				satisfied = false
			}
		}
		if dependsOnCompleted && satisfied {
			unlocked = append(unlocked, id)
		}
	}
	return unlocked
}
