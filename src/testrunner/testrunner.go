package testrunner

import (
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/a-le/microdbal/src/cli"
	"github.com/a-le/microdbal/src/config"
	"github.com/spf13/cobra"
)

func init() {
	testCommand := &cobra.Command{
		Use:   "test [dsn [username [password]]]",
		Short: "Run the test suite against a database",
		Long: `Run the test suite against the given database. With no arguments the
tests run against an in-memory sqlite database with empty credentials.`,
		Run: func(cmd *cobra.Command, args []string) {
			dsn := config.DefaultTestDSN
			username := ""
			password := ""
			if len(args) > 0 {
				dsn = args[0]
			}
			if len(args) > 1 {
				username = args[1]
			}
			if len(args) > 2 {
				password = args[2]
			}

			gotest := exec.Command("go", "test", "./...")
			gotest.Env = append(os.Environ(),
				config.EnvTestDSN+"="+dsn,
				config.EnvTestUser+"="+username,
				config.EnvTestPassword+"="+password,
			)
			gotest.Stdout = os.Stdout
			gotest.Stderr = os.Stderr

			if err := gotest.Run(); err != nil {
				var exitErr *exec.ExitError
				if errors.As(err, &exitErr) {
					os.Exit(exitErr.ExitCode())
				}
				fmt.Printf("ERROR: failed to run go test: %v\n", err)
				os.Exit(1)
			}
		},
	}
	cli.RootCommand.AddCommand(testCommand)
}
