package models

// Course is a catalogue entry. (Department, Number) is the de facto lookup
// key; the store does not enforce it.
type Course struct {
	ID         string   `json:"_id" bson:"_id"`
	Department string   `json:"department" bson:"department"`
	Number     string   `json:"number" bson:"number"`
	Title      string   `json:"title" bson:"title"`
	Books      []string `json:"books" bson:"books"`
}

func (c *Course) ApplyDefaults() {
	if c.Books == nil {
		c.Books = []string{}
	}
}
