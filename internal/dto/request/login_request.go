package request

// LoginRequest 登录 (LOGIN_MSG)
type LoginRequest struct {
	ID       int64  `json:"id" binding:"required,gt=0"`
	Password string `json:"password" binding:"required"`
}

// LogoutRequest 注销 (LOGINOUT_MSG)
type LogoutRequest struct {
	ID int64 `json:"id" binding:"required,gt=0"`
}
