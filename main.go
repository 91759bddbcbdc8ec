package main

import "github.com/sgdocumental/document-tracking/cmd"

func main() {
	cmd.Execute()
}
