package main

import "github.com/example/study-planner/cmd"

func main() {
	cmd.Execute()
}
