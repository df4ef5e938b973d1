package util

import "errors"

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrEmailRegistered  = errors.New("email already registered")
	ErrModuleNotFound   = errors.New("module not found")
	ErrCourseNotFound   = errors.New("course not found")
	ErrNotEnrolled      = errors.New("not enrolled in course")
	ErrAlreadyEnrolled  = errors.New("already enrolled in course")
	ErrPermissionDenied = errors.New("permission denied")
	ErrSelfPrerequisite = errors.New("module cannot require itself")
	ErrUnknownPrereq    = errors.New("prerequisite id does not exist")
	ErrPrereqCycle      = errors.New("prerequisite edge would create a cycle")
)
