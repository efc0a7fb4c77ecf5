package main

import "vigil/cmd/admin/cmd"

func main() {
	cmd.Execute()
}
