package dto

// RegisterReq represents the request body for the one-shot /api/auth/register endpoint.
type RegisterReq struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterResp is returned with 201 on success.
type RegisterResp struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}
