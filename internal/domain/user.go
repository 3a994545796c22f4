package domain

import "time"

// Membership roles as stored by the platform directory. Audience role facets
// match on these exact values.
const (
	RoleAdmin  = "ADMIN"
	RoleCoach  = "COACH"
	RolePlayer = "PLAYER"
	RoleParent = "PARENT"
)

// User is the slice of the member directory the push engine reads: role and
// team membership drive audience resolution. Account CRUD lives in the main
// platform API.
type User struct {
	UserID    string     `json:"id" dynamodbav:"user_id"`
	Email     string     `json:"email" dynamodbav:"email"`
	Role      string     `json:"role" dynamodbav:"role"`
	TeamID    *string    `json:"team_id,omitempty" dynamodbav:"team_id,omitempty"`
	Enable    int        `json:"enable" dynamodbav:"enable"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" dynamodbav:"deleted_at,omitempty"`
	CreatedAt time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt time.Time  `json:"updated" dynamodbav:"updated_at"`
}

// Team groups members under a region for audience targeting.
type Team struct {
	TeamID    string    `json:"id" dynamodbav:"team_id"`
	Name      string    `json:"name" dynamodbav:"name"`
	Region    string    `json:"region" dynamodbav:"region"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updated" dynamodbav:"updated_at"`
}
