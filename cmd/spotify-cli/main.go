package main

import "github.com/tessro/spotify-cli/internal/cli"

func main() {
	cli.Execute()
}
