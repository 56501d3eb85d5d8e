package main

import "github.com/electrolink/storefront/cmd/storefront-launcher/cmd"

func main() {
	cmd.Execute()
}
