package main

import "github.com/danilofalcao/llama-relay/internal/cmd"

func main() {
	cmd.Run()
}
