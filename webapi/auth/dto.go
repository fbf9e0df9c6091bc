package auth

// RegisterInput represents the request body for user registration.
type RegisterInput struct {
	Username    string `json:"username" validate:"required,min=3,max=32,alphanum"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	PhoneNumber string `json:"phone_number" validate:"omitempty,min=10,max=13"`
}

// LoginInput represents the request body for user authentication.
type LoginInput struct {
	Identity string `json:"identity" validate:"required"`
	Password string `json:"password" validate:"required"`
}
