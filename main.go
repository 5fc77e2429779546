package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	app := NewApp()
	rootCmd := SetupCommands(app)

	err := rootCmd.ExecuteContext(context.Background())
	if cerr := app.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
