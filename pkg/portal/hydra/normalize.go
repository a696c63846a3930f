package hydra

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// View holds the pagination links of a collection. Each link is optional;
// an absent Next means the last page.
type View struct {
	First    string `json:"first,omitempty"`
	Last     string `json:"last,omitempty"`
	Previous string `json:"previous,omitempty"`
	Next     string `json:"next,omitempty"`
}

// Collection is the canonical envelope every collection response is
// normalized into, regardless of which shape the backend produced.
type Collection struct {
	Members    []any `json:"members"`
	TotalItems int   `json:"totalItems"`
	View       *View `json:"view,omitempty"`
}

// Decode re-marshals the members into a typed slice or struct slice.
func (c *Collection) Decode(out any) error {
	data, err := json.Marshal(c.Members)
	if err != nil {
		return fmt.Errorf("failed to marshal members: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to unmarshal members: %w", err)
	}
	return nil
}

// A shapeMatcher is one recognizer in the ordered fallback chain: a pure
// predicate plus a transform into the canonical envelope. The backend's
// collection shape has drifted across versions and endpoints, so the
// matcher order is an explicit, testable contract.
type shapeMatcher struct {
	name      string
	match     func(data any) bool
	transform func(data any) *Collection
}

var matchers = []shapeMatcher{
	{
		// Proper Hydra collection with the hydra: prefix.
		name: "hydra-prefixed",
		match: func(data any) bool {
			m, ok := data.(map[string]any)
			if !ok {
				return false
			}
			_, present := m["hydra:member"]
			return present
		},
		transform: func(data any) *Collection {
			m := data.(map[string]any)
			members := asArray(m["hydra:member"])
			return &Collection{
				Members:    members,
				TotalItems: intOr(m["hydra:totalItems"], len(members)),
				View:       viewFrom(m["hydra:view"]),
			}
		},
	},
	{
		// Simplified Hydra format without the prefix:
		// { member: [...], totalItems: 35, view: {...} }
		name: "simplified",
		match: func(data any) bool {
			m, ok := data.(map[string]any)
			if !ok {
				return false
			}
			_, isArr := m["member"].([]any)
			return isArr
		},
		transform: func(data any) *Collection {
			m := data.(map[string]any)
			members := m["member"].([]any)
			view := viewFrom(m["view"])
			if view == nil {
				view = viewFrom(m["hydra:view"])
			}
			return &Collection{
				Members:    members,
				TotalItems: intOr(m["totalItems"], intOr(m["hydra:totalItems"], len(members))),
				View:       view,
			}
		},
	},
	{
		// A bare JSON array of resources.
		name: "bare-array",
		match: func(data any) bool {
			_, ok := data.([]any)
			return ok
		},
		transform: func(data any) *Collection {
			members := data.([]any)
			return &Collection{Members: members, TotalItems: len(members)}
		},
	},
	{
		// Any key whose name suggests a member collection and whose value
		// is an array. Keys are scanned in sorted order so the result is
		// deterministic; Go map iteration is not.
		name: "member-key-scan",
		match: func(data any) bool {
			_, ok := findMemberKey(data)
			return ok
		},
		transform: func(data any) *Collection {
			m := data.(map[string]any)
			key, _ := findMemberKey(data)
			members := m[key].([]any)
			view := viewFrom(m["hydra:view"])
			if view == nil {
				view = viewFrom(m["view"])
			}
			return &Collection{
				Members:    members,
				TotalItems: intOr(m["hydra:totalItems"], intOr(m["totalItems"], len(members))),
				View:       view,
			}
		},
	},
	{
		// A single resource; wrap it as a one-element collection.
		name: "single-resource",
		match: func(data any) bool {
			m, ok := data.(map[string]any)
			if !ok {
				return false
			}
			return truthy(m["id"]) || truthy(m["@id"])
		},
		transform: func(data any) *Collection {
			return &Collection{Members: []any{data}, TotalItems: 1}
		},
	},
}

// Normalize maps any decoded JSON value into the canonical collection
// envelope. It is a pure function, total over arbitrary input, and
// deterministic: the same input always yields the same envelope.
func Normalize(data any) *Collection {
	if data == nil {
		return &Collection{Members: []any{}}
	}
	for _, m := range matchers {
		if m.match(data) {
			c := m.transform(data)
			if c.Members == nil {
				c.Members = []any{}
			}
			return c
		}
	}
	return &Collection{Members: []any{}}
}

// NormalizeBytes decodes a raw response body and normalizes it. Bodies
// that are not valid JSON normalize to the empty envelope.
func NormalizeBytes(raw []byte) *Collection {
	var data any
	if len(raw) == 0 || json.Unmarshal(raw, &data) != nil {
		return &Collection{Members: []any{}}
	}
	return Normalize(data)
}

// findMemberKey returns the first key (in sorted order) that suggests a
// member collection and holds an array.
func findMemberKey(data any) (string, bool) {
	m, ok := data.(map[string]any)
	if !ok {
		return "", false
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !strings.Contains(k, "member") && !strings.Contains(k, "items") && !strings.Contains(k, "data") {
			continue
		}
		if _, isArr := m[k].([]any); isArr {
			return k, true
		}
	}
	return "", false
}

// asArray coerces a value to []any, yielding an empty slice otherwise.
func asArray(v any) []any {
	if arr, ok := v.([]any); ok {
		return arr
	}
	return []any{}
}

// intOr extracts a positive integer count, falling back like the backend's
// clients do when the key is absent, zero or mistyped.
func intOr(v any, fallback int) int {
	if f, ok := v.(float64); ok && f > 0 {
		return int(f)
	}
	return fallback
}

// truthy mirrors the identifier check on single resources: present,
// non-empty and non-zero.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case float64:
		return t != 0
	case bool:
		return t
	default:
		return true
	}
}

// viewFrom builds pagination links from either the prefixed or the plain
// view shape; returns nil when no link is present.
func viewFrom(v any) *View {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	pick := func(keys ...string) string {
		for _, k := range keys {
			if s, ok := m[k].(string); ok && s != "" {
				return s
			}
		}
		return ""
	}
	view := &View{
		First:    pick("hydra:first", "first"),
		Last:     pick("hydra:last", "last"),
		Previous: pick("hydra:previous", "previous"),
		Next:     pick("hydra:next", "next"),
	}
	if *view == (View{}) {
		return nil
	}
	return view
}
