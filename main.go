package main

import "amaris/internal/cli"

func main() {
	cli.Execute()
}
