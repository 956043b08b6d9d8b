// rasvec 命令行：按矢量面掩膜/裁剪栅格，查看栅格元数据，输出预览图
package main

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	Execute(NewRootCommand())
}
