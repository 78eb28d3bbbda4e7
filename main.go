package main

import "github.com/rezmoss/prodlog/cmd"

func main() {
	cmd.Execute()
}
