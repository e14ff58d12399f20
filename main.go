package main

import "github.com/anrid/kbguard/cmd"

func main() {
	cmd.Execute()
}
