package domain

// Care category of a child. The string values are the wire values used by the
// API and the database.
type Category string

const (
	CategoryInfant          Category = "infant"
	CategoryToddler         Category = "toddler"
	CategoryPreschool       Category = "preschool"
	CategoryOutOfSchoolCare Category = "out_of_school_care"
)

// Represents a child on the facility roster.
// Coordinates may be absent when the home address has not been geocoded yet;
// the planner must tolerate that.
type Child struct {
	ID       string
	Name     string
	Street   string
	City     string
	State    string
	Coords   *Coordinates
	Category Category
}

// HasCoords reports whether the child has geocoded home coordinates.
func (c *Child) HasCoords() bool { return c.Coords != nil }
