package main

import "github.com/AlexHayrapetyan/RestoBook/cmd"

func main() {
	cmd.Execute()
}
