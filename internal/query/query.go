package query

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrInvalidQuery is returned for malformed where/sort/select strings and for
// predicates a store cannot evaluate.
var ErrInvalidQuery = errors.New("invalid query")

type Operator string

const (
	OpEq  Operator = "$eq"
	OpNe  Operator = "$ne"
	OpIn  Operator = "$in"
	OpNin Operator = "$nin"
	OpGt  Operator = "$gt"
	OpGte Operator = "$gte"
	OpLt  Operator = "$lt"
	OpLte Operator = "$lte"
)

// Condition is one field predicate. Value is a converted scalar, or a slice of
// scalars for OpIn and OpNin.
type Condition struct {
	Field Field
	Op    Operator
	Value any
}

// Filter is a conjunction of conditions.
type Filter []Condition

type SortField struct {
	Field Field
	Desc  bool
}

type Sort []SortField

// List describes one listing: filter, then sort, then skip and limit.
// Limit zero means no limit.
type List struct {
	Filter Filter
	Sort   Sort
	Skip   int
	Limit  int
}

// decodeObject reads a JSON object keeping member order, which matters for
// sort. Nested objects come back as bson.D and arrays as bson.A. Relaxed
// extended JSON is accepted, so {"$date": ...} decodes to a primitive.DateTime.
func decodeObject(raw string) (bson.D, error) {
	data := []byte(raw)
	if !json.Valid(data) {
		return nil, errors.New("malformed JSON")
	}
	var doc bson.D
	if err := bson.UnmarshalExtJSON(data, false, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// plain turns decoded BSON values into the shapes the parsers work with:
// numbers become float64, arrays []any. Documents stay bson.D.
func plain(v any) any {
	switch t := v.(type) {
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case bson.A:
		out := make([]any, len(t))
		for i := range t {
			out[i] = plain(t[i])
		}
		return out
	}
	return v
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidQuery, fmt.Sprintf(format, args...))
}

// ParseFilter parses a where string such as {"completed":false} or
// {"deadline":{"$gte":"2024-01-01T00:00:00Z"}}. An empty string matches all.
func ParseFilter(fields FieldSet, raw string) (Filter, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	members, err := decodeObject(raw)
	if err != nil {
		return nil, invalid("where %q: %v", raw, err)
	}

	var filter Filter
	for _, m := range members {
		field, ok := fields.Lookup(m.Key)
		if !ok {
			return nil, invalid("unknown field %q", m.Key)
		}

		ops, isOps := operatorObject(m.Value)
		if !isOps {
			converted, err := convert(field, plain(m.Value))
			if err != nil {
				return nil, err
			}
			filter = append(filter, Condition{Field: field, Op: OpEq, Value: converted})
			continue
		}

		for _, op := range ops {
			cond, err := buildCondition(field, Operator(op.Key), plain(op.Value))
			if err != nil {
				return nil, err
			}
			filter = append(filter, cond)
		}
	}
	return filter, nil
}

// operatorObject reports whether v is a document made only of $-operators.
// The operators keep document order so generated predicates are deterministic.
func operatorObject(v any) (bson.D, bool) {
	doc, ok := v.(bson.D)
	if !ok || len(doc) == 0 {
		return nil, false
	}
	for _, e := range doc {
		if !strings.HasPrefix(e.Key, "$") {
			return nil, false
		}
	}
	return doc, true
}

func buildCondition(field Field, op Operator, value any) (Condition, error) {
	switch op {
	case OpEq, OpNe, OpGt, OpGte, OpLt, OpLte:
		converted, err := convert(field, value)
		if err != nil {
			return Condition{}, err
		}
		return Condition{Field: field, Op: op, Value: converted}, nil
	case OpIn, OpNin:
		list, ok := value.([]any)
		if !ok {
			return Condition{}, invalid("%s on %q expects an array", op, field.Name)
		}
		converted := make([]any, 0, len(list))
		for _, item := range list {
			v, err := convert(field, item)
			if err != nil {
				return Condition{}, err
			}
			converted = append(converted, v)
		}
		return Condition{Field: field, Op: op, Value: converted}, nil
	default:
		return Condition{}, invalid("unsupported operator %q", op)
	}
}

func convert(field Field, value any) (any, error) {
	switch field.Kind {
	case KindString, KindStringList:
		switch v := value.(type) {
		case string:
			return v, nil
		case nil:
			return "", nil
		}
	case KindBool:
		if v, ok := value.(bool); ok {
			return v, nil
		}
	case KindTime:
		switch v := value.(type) {
		case string:
			t, err := time.Parse(time.RFC3339Nano, v)
			if err != nil {
				return nil, invalid("field %q: %v", field.Name, err)
			}
			return t, nil
		case float64:
			return time.UnixMilli(int64(v)).UTC(), nil
		case primitive.DateTime:
			return v.Time().UTC(), nil
		}
	}
	return nil, invalid("field %q: unexpected value %v", field.Name, value)
}

// ParseSort parses a sort string such as {"deadline":1,"name":-1}.
func ParseSort(fields FieldSet, raw string) (Sort, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	members, err := decodeObject(raw)
	if err != nil {
		return nil, invalid("sort %q: %v", raw, err)
	}

	sort := make(Sort, 0, len(members))
	for _, m := range members {
		field, ok := fields.Lookup(m.Key)
		if !ok {
			return nil, invalid("unknown field %q", m.Key)
		}

		desc, err := direction(plain(m.Value))
		if err != nil {
			return nil, invalid("sort %q: %v", m.Key, err)
		}
		sort = append(sort, SortField{Field: field, Desc: desc})
	}
	return sort, nil
}

func direction(v any) (bool, error) {
	switch d := v.(type) {
	case float64:
		switch d {
		case 1:
			return false, nil
		case -1:
			return true, nil
		}
	case string:
		switch strings.ToLower(d) {
		case "asc", "ascending":
			return false, nil
		case "desc", "descending":
			return true, nil
		}
	}
	return false, fmt.Errorf("direction must be 1, -1, asc or desc, got %v", v)
}

// Params is the parsed form of the where, sort and select strings of a listing.
type Params struct {
	Filter     Filter
	Sort       Sort
	Projection Projection
}

// Parse parses the three query strings of a listing against fields.
func Parse(fields FieldSet, where, sort, sel string) (Params, error) {
	var p Params
	var err error
	if p.Filter, err = ParseFilter(fields, where); err != nil {
		return Params{}, err
	}
	if p.Sort, err = ParseSort(fields, sort); err != nil {
		return Params{}, err
	}
	if p.Projection, err = ParseProjection(fields, sel); err != nil {
		return Params{}, err
	}
	return p, nil
}
