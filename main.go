// Command sdd reports the state of spec-driven development workflows.
package main

import "github.com/sdd-engine/sdd/cmd"

func main() {
	cmd.Execute()
}
