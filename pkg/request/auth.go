package request

type SignUp struct {
	Email       string `validate:"required,email"        json:"email"`
	Password    string `validate:"required,min=8,max=72" json:"password"`
	DisplayName string `validate:"required"              json:"display_name"`
}

type SignIn struct {
	Email    string `validate:"required,email" json:"email"`
	Password string `validate:"required"       json:"password"`
}
