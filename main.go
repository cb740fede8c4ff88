package main

import "github.com/serisow/studio/cmd"

func main() {
	cmd.Execute()
}
