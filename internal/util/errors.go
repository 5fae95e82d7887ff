package util

import "errors"

var (
	ErrEmailRegistered    = errors.New("该邮箱已被注册")
	ErrCourseNotFound     = errors.New("course not found")
	ErrModuleNotFound     = errors.New("module not found")
	ErrActivityNotFound   = errors.New("activity not found")
	ErrVersionNotFound    = errors.New("course version not found")
	ErrInvalidTransition  = errors.New("version status does not allow this transition")
	ErrDraftAlreadyExists = errors.New("course already has an open draft version")
	ErrInvalidSourceState = errors.New("course aggregate is missing required fields")
)
