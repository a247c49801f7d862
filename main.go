package main

import "github.com/Gabee01/pii-detector-sub000/cmd"

func main() {
	cmd.Execute()
}
