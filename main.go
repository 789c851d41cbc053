package main

import "dungji/internal/commands"

func main() {
	commands.Execute()
}
