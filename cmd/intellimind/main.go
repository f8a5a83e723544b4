package main

import "github.com/diogo/intellimind/internal/commands"

func main() {
	commands.Execute()
}
