package main

import "smartrfq/cmd/cli"

func main() {
	cli.Execute()
}
