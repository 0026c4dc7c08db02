// SPDX-License-Identifier: MPL-2.0

package main

import cmd "labinv-cli/cmd/labinv"

func main() {
	cmd.Execute()
}
