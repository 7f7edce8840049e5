package main

import "github.com/coanalystai/coanalyst/cmd"

func main() {
	cmd.Execute()
}
