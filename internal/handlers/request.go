package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/GregMSThompson/widget-dashboard/internal/dto"
	"github.com/GregMSThompson/widget-dashboard/internal/errs"
	"github.com/GregMSThompson/widget-dashboard/internal/models"
)

const maxRequestBytes = 1 << 20

// decodeJSON reads a JSON body into dst. An empty body leaves dst untouched
// when allowEmpty is set.
func decodeJSON(r *http.Request, dst any, allowEmpty bool) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes)).Decode(dst)
	if errors.Is(err, io.EOF) && allowEmpty {
		return nil
	}
	if err != nil {
		return errs.NewValidationError("invalid request body: " + err.Error())
	}
	return nil
}

// pageContextFromQuery reads ?path= and the entity.* query parameters.
func pageContextFromQuery(r *http.Request) dto.PageContext {
	q := r.URL.Query()
	page := dto.PageContext{Path: q.Get("path")}
	entity := models.EntityContext{
		ShortName: q.Get("entity.shortName"),
		FullName:  q.Get("entity.fullName"),
		Domain:    q.Get("entity.domain"),
	}
	if entity.ShortName != "" || entity.FullName != "" || entity.Domain != "" {
		page.Entity = &entity
	}
	return page
}
