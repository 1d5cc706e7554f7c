package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// conn picks the transaction when one is in flight, the pool otherwise.
func conn(db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return db
}

// forUpdate adds SELECT ... FOR UPDATE; only meaningful inside a transaction.
func forUpdate(q *gorm.DB) *gorm.DB {
	return q.Clauses(clause.Locking{Strength: "UPDATE"})
}
