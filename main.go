package main

import (
	"github.com/GNOME/orca-sub019/cmd"

	_ "github.com/GNOME/orca-sub019/internal/platform/xdo"
)

func main() {
	cmd.Execute()
}
