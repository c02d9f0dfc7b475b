package main

import "execcheck/internal/cli"

func main() {
	cli.Execute()
}
