// cubegate - a logical 3x3x3 cube engine with a terminal player, an HTTP
// bridge for renderers and a GoCube mirror.
package main

import (
	"github.com/SeamusWaldron/cubegate/internal/cli"
)

func main() {
	cli.Execute()
}
