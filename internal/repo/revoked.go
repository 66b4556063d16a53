package repo

import (
	"context"
	"time"

	"gorm.io/gorm/clause"

	"github.com/rlammers/microblog-api/internal/models"
)

// Revoke records a jti in the ledger. Revoking an already-revoked jti is
// a no-op success.
func (r *GormRepo) Revoke(ctx context.Context, jti string) error {
	row := models.RevokedToken{JTI: jti, DateRevoked: time.Now().UTC()}
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "jti"}}, DoNothing: true}).
		Create(&row).Error
}

// IsRevoked is consulted on every authenticated request after the token
// itself verifies; a verified-but-revoked token must still be rejected.
func (r *GormRepo) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.RevokedToken{}).
		Where("jti = ?", jti).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// PruneRevoked deletes ledger rows older than the retention window and
// reports how many went. Only safe once every token inside the window has
// expired, so it runs from the maintenance command, never the request path.
func (r *GormRepo) PruneRevoked(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	res := r.DB.WithContext(ctx).
		Where("date_revoked < ?", cutoff).
		Delete(&models.RevokedToken{})
	return res.RowsAffected, res.Error
}
