package repository

import (
	"github.com/yukikurage/task-user-api/internal/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongoFilter translates a filter into a query document. Conditions are joined
// with $and so several operators on one field keep their order.
func mongoFilter(filter query.Filter) bson.D {
	if len(filter) == 0 {
		return bson.D{}
	}

	clauses := make(bson.A, 0, len(filter))
	for _, cond := range filter {
		clauses = append(clauses, bson.D{{
			Key:   cond.Field.BSON,
			Value: bson.D{{Key: string(cond.Op), Value: cond.Value}},
		}})
	}
	if len(clauses) == 1 {
		return clauses[0].(bson.D)
	}
	return bson.D{{Key: "$and", Value: clauses}}
}

// mongoFindOptions applies sort, skip and limit. Without an explicit sort
// documents come back in _id order.
func mongoFindOptions(list query.List) *options.FindOptions {
	sort := bson.D{}
	for _, s := range list.Sort {
		dir := 1
		if s.Desc {
			dir = -1
		}
		sort = append(sort, bson.E{Key: s.Field.BSON, Value: dir})
	}
	if len(sort) == 0 {
		sort = bson.D{{Key: "_id", Value: 1}}
	}

	opts := options.Find().SetSort(sort)
	if list.Skip > 0 {
		opts.SetSkip(int64(list.Skip))
	}
	if list.Limit > 0 {
		opts.SetLimit(int64(list.Limit))
	}
	return opts
}
