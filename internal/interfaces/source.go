package interfaces

import "context"

// SheetRow 表格原始行（按列顺序排列的单元格值）
type SheetRow []string

// SheetSource 表格数据源接口。生产实现走 Google Sheets REST API，
// 测试时可替换为内存实现
type SheetSource interface {
	// FetchRows 拉取配置范围内的全部数据行（不含表头）
	FetchRows(ctx context.Context) ([]SheetRow, error)
}
