// Command netinventory serves the network device inventory over HTTP.
package main

import "github.com/architeacher/netinventory/internal/runtime"

func main() {
	runtime.New().Run()
}
