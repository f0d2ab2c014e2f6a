package entity

import (
	"review-scheduler/core/entity"
)

// Roles known to the review-management client
const (
	RoleAdmin    = "admin"
	RoleAdvisor  = "advisor"
	RoleReviewer = "reviewer"
	RoleStudent  = "student"
)

type User struct {
	Name  string `db:"name" json:"name"`
	Email string `db:"email" json:"email"`
	Role  string `db:"role" json:"role"`
	entity.BaseEntity
}

func (u *User) IsReviewer() bool {
	return u.Role == RoleReviewer
}
