package notion

// DatabaseQuery is the body of a database query request.
type DatabaseQuery struct {
	Filter      *Filter `json:"filter,omitempty"`
	Sorts       []Sort  `json:"sorts,omitempty"`
	StartCursor string  `json:"start_cursor,omitempty"`
	PageSize    int     `json:"page_size,omitempty"`
}

// Filter is a property condition or a compound of filters.
type Filter struct {
	Property string             `json:"property,omitempty"`
	Checkbox *CheckboxCondition `json:"checkbox,omitempty"`
	Date     *DateCondition     `json:"date,omitempty"`
	Select   *SelectCondition   `json:"select,omitempty"`
	And      []Filter           `json:"and,omitempty"`
	Or       []Filter           `json:"or,omitempty"`
}

type CheckboxCondition struct {
	Equals bool `json:"equals"`
}

// DateCondition compares against an ISO 8601 date.
type DateCondition struct {
	OnOrBefore string `json:"on_or_before,omitempty"`
	OnOrAfter  string `json:"on_or_after,omitempty"`
}

type SelectCondition struct {
	Equals string `json:"equals"`
}

type SortDirection string

const (
	Ascending  SortDirection = "ascending"
	Descending SortDirection = "descending"
)

type Sort struct {
	Property  string        `json:"property"`
	Direction SortDirection `json:"direction"`
}

// And combines filters, returning the single filter unchanged.
func And(filters ...Filter) Filter {
	if len(filters) == 1 {
		return filters[0]
	}
	return Filter{And: filters}
}

// Or is the disjunction of filters.
func Or(filters ...Filter) Filter {
	if len(filters) == 1 {
		return filters[0]
	}
	return Filter{Or: filters}
}

// CheckboxEquals matches a checkbox property.
func CheckboxEquals(property string, v bool) Filter {
	return Filter{Property: property, Checkbox: &CheckboxCondition{Equals: v}}
}

// DateOnOrBefore matches a date property no later than date (YYYY-MM-DD).
func DateOnOrBefore(property, date string) Filter {
	return Filter{Property: property, Date: &DateCondition{OnOrBefore: date}}
}

// SelectEquals matches a select property.
func SelectEquals(property, v string) Filter {
	return Filter{Property: property, Select: &SelectCondition{Equals: v}}
}
