package repo

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// GormRepo is the single persistence gateway. All mutations commit on
// success and leave nothing behind on failure.
type GormRepo struct {
	DB *gorm.DB
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate key")
}
