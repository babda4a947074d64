package models

import (
	"strings"
	"time"
)

type Condition string

const (
	ConditionNew            Condition = "new"
	ConditionLikeNew        Condition = "like new"
	ConditionUsedVeryGood   Condition = "used - very good"
	ConditionUsedGood       Condition = "used - good"
	ConditionUsedAcceptable Condition = "used - acceptable"
)

var conditions = []Condition{
	ConditionNew,
	ConditionLikeNew,
	ConditionUsedVeryGood,
	ConditionUsedGood,
	ConditionUsedAcceptable,
}

// ParseCondition accepts any letter case and any spacing around the hyphen
// ("used-good", "Used - Good") and returns the canonical spelling.
func ParseCondition(s string) (Condition, bool) {
	key := conditionKey(s)
	for _, c := range conditions {
		if conditionKey(string(c)) == key {
			return c, true
		}
	}
	return "", false
}

func conditionKey(s string) string {
	s = strings.Join(strings.Fields(strings.ToLower(s)), " ")
	return strings.NewReplacer(" - ", "-", " -", "-", "- ", "-").Replace(s)
}

// Listing is a marketplace offer for a Book. AssignedUser is the owner's
// external identity (User.FirebaseID), not a store id.
type Listing struct {
	ID              string    `json:"_id" bson:"_id"`
	Book            string    `json:"book" bson:"book"`
	Description     string    `json:"description" bson:"description"`
	ImageNames      []string  `json:"imageNames" bson:"imageNames"`
	Condition       Condition `json:"condition" bson:"condition"`
	Price           float64   `json:"price" bson:"price"`
	ExchangeBook    string    `json:"exchangeBook,omitempty" bson:"exchangeBook,omitempty"`
	StatusCompleted bool      `json:"statusCompleted" bson:"statusCompleted"`
	DateCreated     time.Time `json:"dateCreated" bson:"dateCreated"`
	AssignedUser    string    `json:"assignedUser" bson:"assignedUser"`
}

func (l *Listing) ApplyDefaults(now time.Time) {
	if l.ImageNames == nil {
		l.ImageNames = []string{}
	}
	if l.DateCreated.IsZero() {
		l.DateCreated = now.UTC()
	}
}
