package main

import (
	"os"

	sadhanacmder "github.com/dhvanilabs/sadhana/cmd/sadhana"
)

func main() {
	cmd := sadhanacmder.NewSadhanaCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
