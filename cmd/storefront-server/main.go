package main

import "github.com/electrolink/storefront/cmd/storefront-server/cmd"

func main() {
	cmd.Execute()
}
