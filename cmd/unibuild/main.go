// Command unibuild inspects a source repository and emits one universal
// build document per detected application, ready for a container build
// backend.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
