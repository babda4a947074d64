package models

// Book is a textbook. Courses holds the ids of every Course that lists it.
type Book struct {
	ID      string   `json:"_id" bson:"_id"`
	Title   string   `json:"title" bson:"title"`
	Authors []string `json:"authors" bson:"authors"`
	ISBN    string   `json:"isbn" bson:"isbn"`
	Courses []string `json:"courses" bson:"courses"`
}

// ApplyDefaults replaces nil reference sets with empty ones so that stored
// documents and responses always carry arrays.
func (b *Book) ApplyDefaults() {
	if b.Authors == nil {
		b.Authors = []string{}
	}
	if b.Courses == nil {
		b.Courses = []string{}
	}
}
