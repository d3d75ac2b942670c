package dto

import "github.com/spec-kit/assignment-service/internal/domain"

// UpdateUserRequest payload for PUT /users/:id. Absent fields are left unchanged.
type UpdateUserRequest struct {
	Username *string `json:"username" validate:"omitempty,notblank"`
	Role     *string `json:"role" validate:"omitempty,role"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// UsersResponse wraps the account listing.
type UsersResponse struct {
	Users []UserResponse `json:"users"`
}

// NewUserResponse maps a domain user, dropping the password hash.
func NewUserResponse(user domain.User) UserResponse {
	return UserResponse{ID: user.ID, Username: user.Username, Role: string(user.Role)}
}

// NewUsersResponse maps a listing.
func NewUsersResponse(users []domain.User) UsersResponse {
	out := UsersResponse{Users: make([]UserResponse, 0, len(users))}
	for _, user := range users {
		out.Users = append(out.Users, NewUserResponse(user))
	}
	return out
}
