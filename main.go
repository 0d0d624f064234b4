// conversa is the CLI entry point for the transcript analytics engine.
package main

import "github.com/thevectorguy/conversa-ai/cmd"

func main() {
	cmd.Execute()
}
