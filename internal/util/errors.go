package util

import "errors"

var (
	ErrElementNotFound = errors.New("sanctuary element not found")
	ErrStoryNotFound   = errors.New("story not found")
	ErrUnknownSkill    = errors.New("unknown skill name")
)
