// veilbreak maintains the Magiclysm Veilbreak mod: it audits monster ids,
// generates the monster blacklist and installs the mod.
package main

import (
	"os"

	"github.com/hupe1980/veilbreak/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
