package main

import "github.com/jsphweid/chordseg/cmd"

func main() {
	cmd.Execute()
}
