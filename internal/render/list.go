package render

import (
	"encoding/json"
	"fmt"

	"github.com/GregMSThompson/widget-dashboard/internal/models"
	"github.com/GregMSThompson/widget-dashboard/internal/transform"
)

func renderList(v *View, data any) {
	l := &ListView{}
	switch {
	case data == nil:
		v.Placeholder = msgNoData
		return
	case isRecord(data):
		rec, _ := transform.AsRecord(data)
		for _, k := range transform.SortedKeys(rec) {
			l.Items = append(l.Items, ListItem{Key: k, Value: rec[k]})
		}
	default:
		arr, ok := transform.AsArray(data)
		if !ok {
			l.Items = []ListItem{{Key: label("", models.WidgetConfig{Name: v.Title}), Value: data}}
			break
		}
		for i, item := range arr {
			l.Items = append(l.Items, listItem(i, item))
		}
	}
	v.List = l
}

// listItem reads key/value pairs from records that carry them and otherwise
// labels the element by position.
func listItem(i int, item any) ListItem {
	rec, ok := transform.AsRecord(item)
	if !ok {
		return ListItem{Key: fmt.Sprintf("Item %d", i+1), Value: item}
	}
	key := fmt.Sprintf("Item %d", i+1)
	for _, k := range []string{"key", "name", "label", "title"} {
		if s, ok := rec[k].(string); ok && s != "" {
			key = s
			break
		}
	}
	if value, ok := rec["value"]; ok {
		return ListItem{Key: key, Value: value}
	}
	return ListItem{Key: key, Value: rec}
}

func renderQuery(v *View, data any) {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		v.Placeholder = msgRenderFailure
		return
	}

	q := &QueryView{JSON: string(b)}
	if arr, ok := transform.AsArray(data); ok {
		q.IsArray = true
		q.Records = len(arr)
		if len(arr) > 0 {
			if rec, ok := transform.AsRecord(arr[0]); ok {
				q.Fields = len(rec)
			}
		}
	}
	v.Query = q
}

func renderCards(v *View, data any, cfg models.WidgetConfig) {
	rec, ok := transform.AsRecord(data)
	if !ok {
		if arr, isArr := transform.AsArray(data); isArr && len(arr) > 0 {
			rec, ok = transform.AsRecord(arr[0])
		}
	}
	if !ok {
		v.Placeholder = msgNoData
		return
	}

	rec = transform.SelectFields(rec, cfg.FieldSelection)
	keys := transform.SortedKeys(rec)
	if fs := cfg.FieldSelection; fs != nil && fs.Enabled && len(fs.SelectedFields) > 0 {
		keys = keys[:0]
		for _, f := range fs.SelectedFields {
			if _, present := rec[f]; present {
				keys = append(keys, f)
			}
		}
	}

	c := &CardsView{Fields: make([]Field, 0, len(keys))}
	for _, k := range keys {
		c.Fields = append(c.Fields, Field{Key: k, Label: transform.HumanizeKey(k), Value: rec[k]})
	}
	v.Cards = c
}

// renderSummary lists an object's fields and synthesizes a descriptor for
// arrays and scalars.
func renderSummary(v *View, data any) {
	rec, ok := transform.AsRecord(data)
	if !ok {
		rec = describe(data)
	}

	s := &SummaryView{Fields: make([]Field, 0, len(rec))}
	for _, k := range transform.SortedKeys(rec) {
		s.Fields = append(s.Fields, Field{Key: k, Label: transform.HumanizeKey(k), Value: rec[k]})
	}
	v.Summary = s
}

func describe(data any) map[string]any {
	if arr, ok := transform.AsArray(data); ok {
		d := map[string]any{"type": "array", "records": len(arr)}
		if len(arr) > 0 {
			if rec, ok := transform.AsRecord(arr[0]); ok {
				d["fields"] = len(rec)
			}
		}
		return d
	}

	switch data.(type) {
	case nil:
		return map[string]any{"type": "empty"}
	case string:
		return map[string]any{"type": "text", "value": data}
	case bool:
		return map[string]any{"type": "boolean", "value": data}
	}
	if _, ok := transform.ToNumber(data); ok {
		return map[string]any{"type": "number", "value": data}
	}
	return map[string]any{"type": fmt.Sprintf("%T", data), "value": data}
}
