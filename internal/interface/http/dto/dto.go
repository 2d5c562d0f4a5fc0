// Package dto 定义HTTP层的请求/响应结构
//
// 注意：JSON字段名（含空格，如"Book Title"）是既有客户端的外部契约，
// 大小写和空格都不能改
package dto

// AddToWishlistRequest 加入心愿单请求
type AddToWishlistRequest struct {
	Username  string `json:"Username" binding:"required"`
	Author    string `json:"Author" binding:"required"`
	BookTitle string `json:"Book Title" binding:"required"`
}

// UpsertStockRequest 补货请求
// Quantity反序列化失败（非数字）或非正数都按参数错误处理
type UpsertStockRequest struct {
	BookTitle string `json:"Book Title" binding:"required"`
	Quantity  int    `json:"Quantity" binding:"required,gt=0"`
	StoreName string `json:"Store Name" binding:"required"`
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	Username    string `json:"Username" binding:"required"`
	Email       string `json:"Email" binding:"required"`
	OldPassword string `json:"Old Password" binding:"required"`
	NewPassword string `json:"New Password" binding:"required"`
}

// BookRow 图书行（列表响应按行数组原样返回）
type BookRow struct {
	ID     uint   `json:"Book ID"`
	Title  string `json:"Title"`
	Author string `json:"Author"`
}

// ReviewRow 书评行
type ReviewRow struct {
	ID        uint   `json:"Review ID"`
	BookTitle string `json:"Book Title"`
	Review    string `json:"Review"`
}
