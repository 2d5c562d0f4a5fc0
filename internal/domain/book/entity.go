package book

// Book 图书实体
// 设计说明：
// 图书目录由后台管理流程维护，本服务只读——没有任何写路径触及图书行。
// (Title, Author)组合在业务上唯一标识一本书（心愿单按此引用图书）。
type Book struct {
	ID     uint
	Title  string
	Author string
}
