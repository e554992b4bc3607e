package main

import "github.com/websectester/websectester/cmd"

func main() {
	cmd.Execute()
}
