package main

import "github.com/electrolink/storefront/cmd/storefront-packager/cmd"

func main() {
	cmd.Execute()
}
