package main

import "github.com/mvp-joe/codefeat/internal/cli"

func main() {
	cli.Execute()
}
