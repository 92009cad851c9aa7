// Copyright © 2024 The vjailbreak authors

package main

import (
	"fmt"
	"os"

	"github.com/openstack-archive/stx-nfv-sub001/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
