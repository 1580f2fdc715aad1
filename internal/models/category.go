package models

import (
	"fmt"
	"strings"
)

// Category is a genre label such as "Comedy".
type Category struct {
	id   int
	name string
}

// NewCategory creates a Category, trimming the name.
func NewCategory(id int, name string) (*Category, error) {
	if err := validateID("category id", id); err != nil {
		return nil, err
	}
	trimmed, err := validateText("category name", name)
	if err != nil {
		return nil, err
	}
	return &Category{id: id, name: trimmed}, nil
}

func (c *Category) ID() int      { return c.id }
func (c *Category) Name() string { return c.name }

func (c *Category) SetName(name string) error {
	trimmed, err := validateText("category name", name)
	if err != nil {
		return err
	}
	c.name = trimmed
	return nil
}

// Equal compares categories by id.
func (c *Category) Equal(o *Category) bool {
	return o != nil && c.id == o.id
}

// Compare orders categories by name.
func (c *Category) Compare(o *Category) int {
	return strings.Compare(c.name, o.name)
}

func (c *Category) String() string {
	return fmt.Sprintf("<Category %d: %s>", c.id, c.name)
}
