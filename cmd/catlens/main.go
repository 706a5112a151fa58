package main

import "catlens/internal/cli"

func main() {
	cli.Execute()
}
