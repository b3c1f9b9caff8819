package main

import "github.com/faanross/m365dns/internal/cli"

func main() {
	cli.Execute()
}
