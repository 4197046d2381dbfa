// Package main is the entry point for the Tier-Bot CLI.
package main

import "github.com/tiergh/tier-bot/cmd/tierbot/commands"

func main() {
	commands.Execute()
}
