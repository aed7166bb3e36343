package group_role_enum

// 群成员角色
const (
	Creator = "creator" // 群主
	Normal  = "normal"  // 普通成员
)
