package request

// RegisterRequest 注册 (REG_MSG)
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=50"`
	Password string `json:"password" binding:"required,max=72"`
}
