package main

import "github.com/marvinkome/tada/cmd"

func main() {
	cmd.Execute()
}
