package main

import (
	"gramflow/internal/cmd"
)

func main() {
	cmd.Run()
}
