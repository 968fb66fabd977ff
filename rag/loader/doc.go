// Package loader 把原始文件变成 rag.Document，供分块与索引流水线消费。
//
// 每种格式一个 DocumentLoader 实现，Registry 按扩展名路由：
//
//	reg := loader.NewRegistry()
//	docs, err := reg.Load(ctx, "/data/manual.pdf")
//
// 内置格式：.txt、.md、.json/.jsonl、.csv、.html/.htm、.pdf。
// 自定义格式可通过 Register 挂载。
package loader
