package main

import "github.com/Yates-Labs/sitcom/cmd"

func main() {
	cmd.Execute()
}
