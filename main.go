package main

import (
	"log"

	"github.com/hirelens/hirelens/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
