package transform

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/GregMSThompson/widget-dashboard/internal/models"
)

// SelectFields restricts a record to the selected fields when selection is
// enabled and non-empty, then optionally drops null, missing and empty-string
// values. The input record is not modified.
func SelectFields(rec map[string]any, fs *models.FieldSelection) map[string]any {
	if fs == nil || !fs.Enabled {
		return rec
	}

	out := map[string]any{}
	if len(fs.SelectedFields) > 0 {
		for _, f := range fs.SelectedFields {
			v, ok := rec[f]
			if !ok {
				if fs.ExcludeNullFields {
					continue
				}
				v = nil
			}
			out[f] = v
		}
	} else {
		for k, v := range rec {
			out[k] = v
		}
	}

	if fs.ExcludeNullFields {
		for k, v := range out {
			if v == nil || v == "" {
				delete(out, k)
			}
		}
	}
	return out
}

var camelBoundary = regexp.MustCompile(`([a-z0-9])([A-Z])`)

// HumanizeKey turns a field name like "openTicketCount" or "open_ticket_count"
// into a display label: "Open Ticket Count".
func HumanizeKey(key string) string {
	s := camelBoundary.ReplaceAllString(key, "$1 $2")
	s = strings.NewReplacer("_", " ", "-", " ", ".", " ").Replace(s)

	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
