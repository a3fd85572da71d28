// Command polyglot translates LLM API traffic between the OpenAI Chat,
// OpenAI Responses and Anthropic Messages protocols, either as an HTTP
// service or one document at a time from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		os.Exit(1)
	}
}
