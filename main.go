package main

import "github.com/Autonom664/hr-performance-dstchemicals/cmd"

func main() {
	cmd.Execute()
}
