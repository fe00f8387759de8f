package service

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"tasktracker/internal/models"
)

var hexColorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// newValidator registers the project-specific rules on a validator instance.
// It panics when a rule cannot be registered.
func newValidator() *validator.Validate {
	v := validator.New()
	rules := map[string]validator.Func{
		"hexcolor6": func(fl validator.FieldLevel) bool {
			return hexColorPattern.MatchString(fl.Field().String())
		},
		"priority": func(fl validator.FieldLevel) bool {
			return models.Priority(fl.Field().String()).Valid()
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("register %s validation: %v", tag, err))
		}
	}
	return v
}

// checker accumulates per-field failures into one ValidationError.
type checker struct {
	v    *validator.Validate
	errs models.ValidationError
}

func (c *checker) check(field string, value any, tag string) {
	err := c.v.Var(value, tag)
	if err == nil {
		return
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		c.errs.Add(field, err.Error())
		return
	}
	c.errs.Add(field, describe(verrs[0]))
}

func (c *checker) err() error {
	return c.errs.OrNil()
}

// describe renders a validator failure the way the API reports it.
func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must not be empty"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "gt":
		return "must be a positive integer"
	case "hexcolor6":
		return "must be a hex color like #3B82F6"
	case "priority":
		return "must be high, medium, or low"
	}
	return "is invalid"
}

func (c *checker) title(title string) string {
	title = strings.TrimSpace(title)
	c.check("title", title, "required,max=255")
	return title
}

func (c *checker) name(name string) string {
	name = strings.TrimSpace(name)
	c.check("name", name, "required,max=100")
	return name
}

func (c *checker) color(color string) string {
	c.check("color", color, "hexcolor6")
	return color
}

func (c *checker) priority(p models.Priority) models.Priority {
	c.check("priority", string(p), "priority")
	return p
}

func (c *checker) categoryID(id *int64) {
	if id != nil {
		c.check("categoryId", *id, "gt=0")
	}
}

func trimmedPtr(v *string) *string {
	if v == nil {
		return nil
	}
	out := strings.TrimSpace(*v)
	return &out
}
