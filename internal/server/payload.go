package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"tasktracker/internal/models"
	"tasktracker/internal/service"
)

var errInvalidPayload = errors.New("request body must be a JSON object")

// payload keeps the raw members of a JSON object body so that handlers can
// tell an omitted field from an explicit null.
type payload struct {
	raw  map[string]json.RawMessage
	errs models.ValidationError
}

func readPayload(c *gin.Context) (*payload, error) {
	var raw map[string]json.RawMessage
	if err := c.ShouldBindJSON(&raw); err != nil {
		return nil, errInvalidPayload
	}
	if raw == nil {
		return nil, errInvalidPayload
	}
	return &payload{raw: raw}, nil
}

func (p *payload) lookup(key string) (json.RawMessage, bool) {
	v, ok := p.raw[key]
	return v, ok
}

func isNull(v json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}

func (p *payload) str(key string) models.Field[string] {
	v, ok := p.lookup(key)
	if !ok {
		return models.Field[string]{}
	}
	var s string
	if isNull(v) || json.Unmarshal(v, &s) != nil {
		p.errs.Add(key, "must be a string")
		return models.Field[string]{}
	}
	return models.Some(s)
}

// optionalStr treats null as clearing the field.
func (p *payload) optionalStr(key string) models.Field[*string] {
	v, ok := p.lookup(key)
	if !ok {
		return models.Field[*string]{}
	}
	if isNull(v) {
		return models.Some[*string](nil)
	}
	var s string
	if json.Unmarshal(v, &s) != nil {
		p.errs.Add(key, "must be a string")
		return models.Field[*string]{}
	}
	return models.Some(&s)
}

func (p *payload) boolean(key string) models.Field[bool] {
	v, ok := p.lookup(key)
	if !ok {
		return models.Field[bool]{}
	}
	var b bool
	if isNull(v) || json.Unmarshal(v, &b) != nil {
		p.errs.Add(key, "must be true or false")
		return models.Field[bool]{}
	}
	return models.Some(b)
}

// date accepts YYYY-MM-DD or RFC 3339; null and "" clear the field.
func (p *payload) date(key string) models.Field[*models.Date] {
	v, ok := p.lookup(key)
	if !ok {
		return models.Field[*models.Date]{}
	}
	if isNull(v) {
		return models.Some[*models.Date](nil)
	}
	var s string
	if json.Unmarshal(v, &s) != nil {
		p.errs.Add(key, "must be a date in YYYY-MM-DD format")
		return models.Field[*models.Date]{}
	}
	if strings.TrimSpace(s) == "" {
		return models.Some[*models.Date](nil)
	}
	d, err := models.ParseDate(s)
	if err != nil {
		p.errs.Add(key, "must be a date in YYYY-MM-DD format")
		return models.Field[*models.Date]{}
	}
	return models.Some(&d)
}

// reference accepts an integer or a numeric string; null and "" clear the
// field. Range checks are left to the service.
func (p *payload) reference(key string) models.Field[*int64] {
	v, ok := p.lookup(key)
	if !ok {
		return models.Field[*int64]{}
	}
	if isNull(v) {
		return models.Some[*int64](nil)
	}

	var id int64
	if json.Unmarshal(v, &id) == nil {
		return models.Some(&id)
	}
	var s string
	if json.Unmarshal(v, &s) == nil {
		s = strings.TrimSpace(s)
		if s == "" {
			return models.Some[*int64](nil)
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return models.Some(&n)
		}
	}
	p.errs.Add(key, "must be a positive integer")
	return models.Field[*int64]{}
}

// tags treats null as an empty list.
func (p *payload) tags(key string) models.Field[[]string] {
	v, ok := p.lookup(key)
	if !ok {
		return models.Field[[]string]{}
	}
	if isNull(v) {
		return models.Some([]string{})
	}
	var list []string
	if json.Unmarshal(v, &list) != nil {
		p.errs.Add(key, "must be an array of strings")
		return models.Field[[]string]{}
	}
	if list == nil {
		list = []string{}
	}
	return models.Some(list)
}

func (p *payload) err() error {
	return p.errs.OrNil()
}

func (p *payload) newTask() service.NewTask {
	return service.NewTask{
		Title:       p.str("title").Value,
		Description: p.optionalStr("description").Value,
		Priority:    models.Priority(p.str("priority").Value),
		DueDate:     p.date("dueDate").Value,
		CategoryID:  p.reference("categoryId").Value,
		Tags:        p.tags("tags").Value,
	}
}

func (p *payload) taskPatch() models.TaskPatch {
	patch := models.TaskPatch{
		Title:       p.str("title"),
		Description: p.optionalStr("description"),
		IsCompleted: p.boolean("isCompleted"),
		DueDate:     p.date("dueDate"),
		CategoryID:  p.reference("categoryId"),
		Tags:        p.tags("tags"),
	}
	if pr := p.str("priority"); pr.Set {
		patch.Priority = models.Some(models.Priority(pr.Value))
	}
	return patch
}

func (p *payload) newCategory() service.NewCategory {
	return service.NewCategory{
		Name:  p.str("name").Value,
		Color: p.str("color").Value,
	}
}

func (p *payload) categoryPatch() models.CategoryPatch {
	return models.CategoryPatch{
		Name:  p.str("name"),
		Color: p.str("color"),
	}
}
