package handler

// MessageResponse is the body of every error and of plain acknowledgements.
type MessageResponse struct {
	Message string `json:"message"`
}

// --- Auth ---

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,maxbytes=72"`
}

type registerResponse struct {
	Username string `json:"username"`
	Message  string `json:"message"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Message  string `json:"message"`
}

type meResponse struct {
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

// --- Products ---

type productRequest struct {
	Name        string  `json:"name"        validate:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price"       validate:"gt=0"`
	Quantity    int     `json:"quantity"    validate:"gte=0"`
}

