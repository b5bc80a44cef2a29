package models

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session is the subset of the login response the warden uses.
type Session struct {
	ID         int64  `json:"id"`
	Email      string `json:"email"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	LocationID int64  `json:"locationId"`
	Token      string `json:"token"`
}

type PostRequest struct {
	Headline string `json:"headline"`
	Text     string `json:"text"`
	GroupID  string `json:"groupId"`
	Public   bool   `json:"public"`
}
