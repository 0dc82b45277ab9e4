package api

type registerRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type scoreRequest struct {
	Answers map[int]int `json:"answers" validate:"required"`
}

type answerRequest struct {
	QuestionID int `json:"question_id" validate:"required,gt=0"`
	Value      int `json:"value"`
}

type submitRequest struct {
	OrganizationName string `json:"organization_name" validate:"max=200"`
}
