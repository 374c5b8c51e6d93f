// Command pubindex indexes a directory of markdown posts and lists, renders,
// serves or exports it.
package main

import (
	"os"

	"github.com/alecthomas/kong"
	_ "github.com/joho/godotenv/autoload"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	var cli CLI
	g := &Global{Out: os.Stdout}
	ctx := kong.Parse(&cli,
		kong.Name("pubindex"),
		kong.Description("Index, render and preview a directory of markdown posts."),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	)
	ctx.FatalIfErrorf(ctx.Run(g, &cli))
}
