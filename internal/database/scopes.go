package database

import (
	"math"

	"gorm.io/gorm"
)

// Window applies skip and limit to a GORM query. A zero limit means no limit;
// a large limit is still emitted when skipping, since some dialects reject
// OFFSET without LIMIT.
func Window(skip, limit int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if limit > 0 {
			db = db.Limit(limit)
		} else if skip > 0 {
			db = db.Limit(math.MaxInt32)
		}
		if skip > 0 {
			db = db.Offset(skip)
		}
		return db
	}
}
