package main

import "github.com/josephlewis42/treesh/cmd"

func main() {
	cmd.Execute()
}
