package domain

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User models an authenticated actor. Users are created on first successful
// sign-in from an external identity provider; only profile fields and the
// role are mutable afterwards.
type User struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	Email     string    `json:"email" bson:"email"`
	AvatarURL string    `json:"avatar_url,omitempty" bson:"avatar_url,omitempty"`
	Role      string    `json:"role" bson:"role"`
	// External identity reference: the provider name plus the id that
	// provider assigned to this user. The pair is unique across users.
	Provider  string    `json:"provider" bson:"provider"`
	Subject   string    `json:"subject" bson:"subject"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}
