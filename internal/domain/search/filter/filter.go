package filter

import "fmt"

// MaxConditions is the maximum number of conditions in one expression.
const MaxConditions = 8

// CategoryField is the indexed TAG field holding the product category.
const CategoryField = "category"

// Condition is an exact TAG match on an indexed field.
type Condition struct {
	field string
	value string
}

// NewMatch creates an exact tag match condition.
func NewMatch(field, value string) (Condition, error) {
	if field == "" {
		return Condition{}, fmt.Errorf("filter field is required")
	}
	if value == "" {
		return Condition{}, fmt.Errorf("match value is required for field %q", field)
	}
	return Condition{field: field, value: value}, nil
}

// Field returns the indexed field name.
func (c Condition) Field() string { return c.field }

// Value returns the value the field must equal.
func (c Condition) Value() string { return c.value }

// Expression is a conjunction of conditions applied before KNN ranking.
type Expression struct {
	must []Condition
}

// All combines conditions with AND semantics.
func All(conds ...Condition) (Expression, error) {
	if len(conds) > MaxConditions {
		return Expression{}, fmt.Errorf("too many filter conditions (max %d)", MaxConditions)
	}
	return Expression{must: conds}, nil
}

// Category restricts a search to one product category.
// An empty category yields an empty (match-all) expression.
func Category(name string) Expression {
	if name == "" {
		return Expression{}
	}
	return Expression{must: []Condition{{field: CategoryField, value: name}}}
}

// Must returns the conditions.
func (e Expression) Must() []Condition { return e.must }

// IsEmpty reports whether the expression matches everything.
func (e Expression) IsEmpty() bool { return len(e.must) == 0 }
