package main

import (
	"github.com/learningorchestra/orchestra/cmd"
)

func main() {
	cmd.Execute()
}
