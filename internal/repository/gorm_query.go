package repository

import (
	"fmt"

	"github.com/yukikurage/task-user-api/internal/database"
	"github.com/yukikurage/task-user-api/internal/query"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// applyFilter turns a parsed filter into WHERE conditions. Only fields with a
// column can be filtered.
func applyFilter(db *gorm.DB, filter query.Filter) (*gorm.DB, error) {
	for _, cond := range filter {
		if cond.Field.Column == "" {
			return nil, fmt.Errorf("%w: field %q cannot be filtered", ErrInvalidQuery, cond.Field.Name)
		}
		column := clause.Column{Name: cond.Field.Column}

		var expr clause.Expression
		switch cond.Op {
		case query.OpEq:
			expr = clause.Eq{Column: column, Value: cond.Value}
		case query.OpNe:
			expr = clause.Neq{Column: column, Value: cond.Value}
		case query.OpGt:
			expr = clause.Gt{Column: column, Value: cond.Value}
		case query.OpGte:
			expr = clause.Gte{Column: column, Value: cond.Value}
		case query.OpLt:
			expr = clause.Lt{Column: column, Value: cond.Value}
		case query.OpLte:
			expr = clause.Lte{Column: column, Value: cond.Value}
		case query.OpIn:
			values, _ := cond.Value.([]any)
			expr = clause.IN{Column: column, Values: values}
		case query.OpNin:
			values, _ := cond.Value.([]any)
			expr = clause.Not(clause.IN{Column: column, Values: values})
		default:
			return nil, fmt.Errorf("%w: unsupported operator %q", ErrInvalidQuery, cond.Op)
		}
		db = db.Where(expr)
	}
	return db, nil
}

// applyListing applies filter, sort, skip and limit. Without an explicit sort
// rows come back in id order, which follows insertion order for ObjectIDs.
func applyListing(db *gorm.DB, list query.List) (*gorm.DB, error) {
	db, err := applyFilter(db, list.Filter)
	if err != nil {
		return nil, err
	}

	if len(list.Sort) == 0 {
		db = db.Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}})
	}
	for _, s := range list.Sort {
		if s.Field.Column == "" {
			return nil, fmt.Errorf("%w: field %q cannot be sorted", ErrInvalidQuery, s.Field.Name)
		}
		db = db.Order(clause.OrderByColumn{Column: clause.Column{Name: s.Field.Column}, Desc: s.Desc})
	}

	return db.Scopes(database.Window(list.Skip, list.Limit)), nil
}
