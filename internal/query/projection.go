package query

import (
	"encoding/json"
	"strings"
)

// Projection selects the fields returned for each document. In inclusion mode
// only the listed fields (plus id unless excluded) are kept; in exclusion mode
// the listed fields are dropped.
type Projection struct {
	Fields    []string
	Exclude   bool
	excludeID bool
	idOnly    bool
}

// ParseProjection parses a select string such as {"name":1,"deadline":1} or
// {"description":0}. Mixing inclusion and exclusion is only allowed for id.
func ParseProjection(fields FieldSet, raw string) (Projection, error) {
	var p Projection
	if strings.TrimSpace(raw) == "" {
		return p, nil
	}

	members, err := decodeObject(raw)
	if err != nil {
		return p, invalid("select %q: %v", raw, err)
	}

	mode := 0 // 1 include, -1 exclude
	for _, m := range members {
		field, ok := fields.Lookup(m.Key)
		if !ok {
			return Projection{}, invalid("unknown field %q", m.Key)
		}

		include, ok := truthy(plain(m.Value))
		if !ok {
			return Projection{}, invalid("select %q: expected 1, 0, true or false", m.Key)
		}

		if field.Name == "id" {
			p.excludeID = !include
			continue
		}

		want := 1
		if !include {
			want = -1
		}
		if mode != 0 && mode != want {
			return Projection{}, invalid("select cannot mix inclusion and exclusion")
		}
		mode = want
		p.Fields = append(p.Fields, field.Name)
	}

	p.Exclude = mode == -1
	if mode == 0 && p.excludeID {
		// {"id":0} alone excludes id and keeps everything else
		p.Exclude = true
	}
	if mode == 0 && !p.excludeID && len(members) > 0 {
		p.idOnly = true
	}
	return p, nil
}

func truthy(v any) (bool, bool) {
	switch t := v.(type) {
	case float64:
		return t != 0, t == 0 || t == 1
	case bool:
		return t, true
	}
	return false, false
}

// Empty reports whether the projection keeps documents unchanged.
func (p Projection) Empty() bool {
	return len(p.Fields) == 0 && !p.excludeID && !p.idOnly
}

// Apply projects a single document through its JSON form.
func (p Projection) Apply(doc any) (map[string]any, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var full map[string]any
	if err := json.Unmarshal(data, &full); err != nil {
		return nil, err
	}

	if p.Exclude {
		for _, name := range p.Fields {
			delete(full, name)
		}
		if p.excludeID {
			delete(full, "id")
		}
		return full, nil
	}

	out := make(map[string]any, len(p.Fields)+1)
	if !p.excludeID {
		if id, ok := full["id"]; ok {
			out["id"] = id
		}
	}
	for _, name := range p.Fields {
		if v, ok := full[name]; ok {
			out[name] = v
		}
	}
	return out, nil
}

// ApplyAll projects every document of a listing.
func ApplyAll[T any](p Projection, docs []T) ([]map[string]any, error) {
	out := make([]map[string]any, 0, len(docs))
	for i := range docs {
		m, err := p.Apply(docs[i])
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}
