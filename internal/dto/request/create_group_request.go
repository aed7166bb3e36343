package request

// CreateGroupRequest 创建群组 (CREATE_GROUP_MSG)
type CreateGroupRequest struct {
	ID        int64  `json:"id" binding:"required,gt=0"`
	GroupName string `json:"groupname" binding:"required,max=50"`
	GroupDesc string `json:"groupdesc" binding:"max=200"`
}

// AddGroupRequest 加入群组 (ADD_GROUP_MSG)
type AddGroupRequest struct {
	ID      int64 `json:"id" binding:"required,gt=0"`
	GroupID int64 `json:"groupid" binding:"required,gt=0"`
}
