package main

import "github.com/darthryking/projectvis/cmd"

func main() {
	cmd.Execute()
}
