// The main package for the youpredict executable.
package main

import (
	"github.com/youpredict/you-predict-core/cmd"
)

func main() {
	cmd.Execute()
}
