package service

import (
	"strings"

	"github.com/peladahub/pelada-service/internal/repository"
)

func normalizePage(p repository.Page) repository.Page {
	limit := p.Limit
	offset := p.Offset
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return repository.Page{Limit: limit, Offset: offset}
}

// validatePlayerInput normalizes in place and returns field errors, if any.
// Position is free text on purpose: peladas mix "goleiro", "zagueiro", "meia"
// and whatever else the group calls its roles.
func validatePlayerInput(in *PlayerInput) []FieldError {
	in.Name = strings.TrimSpace(in.Name)
	in.Nickname = strings.TrimSpace(in.Nickname)
	in.Position = strings.ToLower(strings.TrimSpace(in.Position))

	var ferrs []FieldError
	if in.Name == "" {
		ferrs = append(ferrs, FieldError{Field: "name", Message: "must not be empty"})
	} else if ln := len([]rune(in.Name)); ln > 100 {
		ferrs = append(ferrs, FieldError{Field: "name", Message: "length must be <= 100"})
	}
	if ln := len([]rune(in.Nickname)); ln > 50 {
		ferrs = append(ferrs, FieldError{Field: "nickname", Message: "length must be <= 50"})
	}
	if ln := len([]rune(in.Position)); ln > 30 {
		ferrs = append(ferrs, FieldError{Field: "position", Message: "length must be <= 30"})
	}
	if in.SkillLevel < 1 || in.SkillLevel > 10 {
		ferrs = append(ferrs, FieldError{Field: "skill_level", Message: "must be between 1 and 10"})
	}
	return ferrs
}
