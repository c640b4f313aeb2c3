package pipeline

import (
	"strconv"
	"strings"

	"github.com/GregMSThompson/widget-dashboard/internal/models"
)

// Params is the flat parameter map sent to a plugin query.
type Params map[string]any

// entityCollections maps a path segment to the context key emitted for the id after it.
var entityCollections = map[string]string{
	"clients":   "clientId",
	"contracts": "contractId",
	"documents": "documentId",
	"users":     "userId",
}

// ResolveContext extracts ambient variables from the navigation path and the
// explicit entity record. A segment pair such as "clients/42" yields clientId=42.
// Nothing is required; unmatched segments are ignored.
func ResolveContext(path string, entity *models.EntityContext) Params {
	out := Params{}

	segments := strings.FieldsFunc(path, func(r rune) bool { return r == '/' })
	for i := 0; i+1 < len(segments); i++ {
		key, ok := entityCollections[strings.ToLower(segments[i])]
		if !ok {
			continue
		}
		id, err := strconv.ParseInt(segments[i+1], 10, 64)
		if err != nil {
			continue
		}
		out[key] = id
		i++
	}

	if entity == nil {
		return out
	}
	for k, v := range entity.Attributes {
		out[k] = v
	}
	if entity.ShortName != "" {
		out["shortName"] = entity.ShortName
	}
	if entity.FullName != "" {
		out["fullName"] = entity.FullName
	}
	if entity.Domain != "" {
		out["domain"] = entity.Domain
	}
	return out
}

// MergeParameters overlays context on the statically configured parameters.
// A context value wins only when it is non-empty; otherwise the static value stays.
func MergeParameters(static map[string]any, vars Params) Params {
	out := make(Params, len(static)+len(vars))
	for k, v := range static {
		out[k] = v
	}
	for k, v := range vars {
		if isEmpty(v) {
			if _, ok := out[k]; ok {
				continue
			}
		}
		out[k] = v
	}
	return out
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	}
	return false
}
