// sqlproof 可验证 SQL 查询的命令行演示
package main

func main() {
	Execute()
}
