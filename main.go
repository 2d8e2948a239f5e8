package main

import "github.com/StinkyLord/rjs-builder/cmd"

func main() {
	cmd.Execute()
}
