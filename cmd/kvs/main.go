// Command kvs is the CLI client: set/get/rm against a running kvs-server.
package main

import (
	"fmt"
	"os"

	"github.com/iamNilotpal/kvs/internal/client"
	"github.com/iamNilotpal/kvs/pkg/options"
	flag "github.com/spf13/pflag"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: kvs <set|get|rm> [args] [--addr IP:PORT]")
		return 1
	}

	command, rest := args[0], args[1:]

	flags := flag.NewFlagSet("kvs", flag.ContinueOnError)
	addr := flags.String("addr", options.DefaultAddr, "TCP address of the kvs-server")
	if err := flags.Parse(rest); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	positional := flags.Args()

	c, err := client.Dial(*addr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer c.Close()

	switch command {
	case "set":
		if len(positional) != 2 {
			fmt.Fprintln(os.Stderr, "usage: kvs set <KEY> <VALUE>")
			return 1
		}
		if err := c.Set(positional[0], positional[1]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0

	case "get":
		if len(positional) != 1 {
			fmt.Fprintln(os.Stderr, "usage: kvs get <KEY>")
			return 1
		}
		value, found, err := c.Get(positional[0])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if !found {
			fmt.Println("Key not found")
			return 0
		}
		fmt.Println(value)
		return 0

	case "rm":
		if len(positional) != 1 {
			fmt.Fprintln(os.Stderr, "usage: kvs rm <KEY>")
			return 1
		}
		found, err := c.Remove(positional[0])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if !found {
			fmt.Fprintln(os.Stderr, "Key not found")
			return 1
		}
		return 0

	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", command)
		return 1
	}
}
