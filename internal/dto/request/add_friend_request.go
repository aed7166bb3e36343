package request

// AddFriendRequest 添加好友 (ADD_FRIEND_MSG)
type AddFriendRequest struct {
	ID       int64 `json:"id" binding:"required,gt=0"`
	FriendID int64 `json:"friendid" binding:"required,gt=0"`
}
