package category

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/MrJamesThe3rd/fintrack/internal/transaction"
)

// Kind says which transaction flows a category can be picked in.
type Kind string

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
	KindBoth    Kind = "both"
)

func (k Kind) Valid() bool {
	return k == KindIncome || k == KindExpense || k == KindBoth
}

const (
	DefaultIcon  = "ellipsis-horizontal"
	NeutralColor = "#6B7280"
)

var (
	ErrNotFound = errors.New("category not found")
	ErrInvalid  = errors.New("invalid category")
)

var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

type Category struct {
	ID    string
	Name  string
	Icon  string
	Color string
	Kind  Kind
}

func (c *Category) Clone() *Category {
	cp := *c
	return &cp
}

// AppliesTo reports whether c can be selected for a transaction of kind k.
func (c *Category) AppliesTo(k transaction.Kind) bool {
	return c.Kind == KindBoth || string(c.Kind) == string(k)
}

func (c *Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}

	if !c.Kind.Valid() {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalid, c.Kind)
	}

	if !colorPattern.MatchString(c.Color) {
		return fmt.Errorf("%w: color %q is not #RRGGBB", ErrInvalid, c.Color)
	}

	return nil
}

type CreateParams struct {
	Name  string
	Icon  string
	Color string
	Kind  Kind
}

func (p CreateParams) toCategory() *Category {
	icon := strings.TrimSpace(p.Icon)
	if icon == "" {
		icon = DefaultIcon
	}

	return &Category{
		Name:  strings.TrimSpace(p.Name),
		Icon:  icon,
		Color: strings.TrimSpace(p.Color),
		Kind:  p.Kind,
	}
}

// UpdateParams is a partial update. Nil fields keep their stored value.
type UpdateParams struct {
	Name  *string
	Icon  *string
	Color *string
	Kind  *Kind
}

func (p UpdateParams) Apply(c *Category) {
	if p.Name != nil {
		c.Name = strings.TrimSpace(*p.Name)
	}

	if p.Icon != nil {
		c.Icon = strings.TrimSpace(*p.Icon)
		if c.Icon == "" {
			c.Icon = DefaultIcon
		}
	}

	if p.Color != nil {
		c.Color = strings.TrimSpace(*p.Color)
	}

	if p.Kind != nil {
		c.Kind = *p.Kind
	}
}

// ColorIndex maps category names to their color. When two categories share a
// name the first one wins.
type ColorIndex map[string]string

func NewColorIndex(categories []*Category) ColorIndex {
	idx := make(ColorIndex, len(categories))

	for _, c := range categories {
		if _, ok := idx[c.Name]; !ok {
			idx[c.Name] = c.Color
		}
	}

	return idx
}

// Of returns the color for name, or NeutralColor when name is unknown.
func (idx ColorIndex) Of(name string) string {
	if color, ok := idx[name]; ok {
		return color
	}

	return NeutralColor
}
