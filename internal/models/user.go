package models

type User struct {
	ID          string   `json:"_id" bson:"_id"`
	FirebaseID  string   `json:"firebaseId" bson:"firebaseId"`
	DisplayName string   `json:"displayName" bson:"displayName"`
	Email       string   `json:"email" bson:"email"`
	Listings    []string `json:"listings" bson:"listings"`
	Wishlist    []string `json:"wishlist" bson:"wishlist"`
}

func (u *User) ApplyDefaults() {
	if u.Listings == nil {
		u.Listings = []string{}
	}
	if u.Wishlist == nil {
		u.Wishlist = []string{}
	}
}
