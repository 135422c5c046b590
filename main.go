package main

import "Spitbox/cmd"

func main() {
	cmd.Execute()
}
