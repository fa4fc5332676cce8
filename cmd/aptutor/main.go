package main

import "aptutor/internal/cli"

func main() {
	cli.Execute()
}
