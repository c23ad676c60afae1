package main

import "github.com/iksnae/procrastinator/cmd"

func main() {
	cmd.Execute()
}
