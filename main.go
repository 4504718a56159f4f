package main

import "github.com/naka-gawa/bugcount-report/cmd"

func main() {
	cmd.Execute()
}
