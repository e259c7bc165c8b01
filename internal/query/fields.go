package query

// Kind is the value type of a queryable field.
type Kind int

const (
	KindString Kind = iota
	KindBool
	KindTime
	// KindStringList matches when the list contains the value.
	KindStringList
)

// Field maps a wire (JSON) field name onto its storage names. An empty Column
// means relational stores cannot filter or sort on the field.
type Field struct {
	Name   string
	Column string
	BSON   string
	Kind   Kind
}

// FieldSet is the immutable set of fields a collection exposes to queries.
type FieldSet struct {
	fields map[string]Field
}

// NewFieldSet builds a FieldSet. "_id" is always accepted as an alias of "id".
func NewFieldSet(fields ...Field) FieldSet {
	m := make(map[string]Field, len(fields))
	for _, f := range fields {
		m[f.Name] = f
	}
	return FieldSet{fields: m}
}

// Lookup resolves a wire field name.
func (s FieldSet) Lookup(name string) (Field, bool) {
	if name == "_id" {
		name = "id"
	}
	f, ok := s.fields[name]
	return f, ok
}

var (
	TaskFields = NewFieldSet(
		Field{Name: "id", Column: "id", BSON: "_id", Kind: KindString},
		Field{Name: "name", Column: "name", BSON: "name", Kind: KindString},
		Field{Name: "description", Column: "description", BSON: "description", Kind: KindString},
		Field{Name: "deadline", Column: "deadline", BSON: "deadline", Kind: KindTime},
		Field{Name: "completed", Column: "completed", BSON: "completed", Kind: KindBool},
		Field{Name: "assignedUser", Column: "assigned_user", BSON: "assignedUser", Kind: KindString},
		Field{Name: "assignedUserName", Column: "assigned_user_name", BSON: "assignedUserName", Kind: KindString},
		Field{Name: "dateCreated", Column: "date_created", BSON: "dateCreated", Kind: KindTime},
	)

	UserFields = NewFieldSet(
		Field{Name: "id", Column: "id", BSON: "_id", Kind: KindString},
		Field{Name: "name", Column: "name", BSON: "name", Kind: KindString},
		Field{Name: "email", Column: "email", BSON: "email", Kind: KindString},
		Field{Name: "pendingTasks", BSON: "pendingTasks", Kind: KindStringList},
		Field{Name: "dateCreated", Column: "date_created", BSON: "dateCreated", Kind: KindTime},
	)
)
