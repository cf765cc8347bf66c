package cli

import (
	"flag"
	"fmt"

	"github.com/platinummonkey/apilint/pkg/catalog/rules"
)

// newRulesCommand creates the rules listing command.
func newRulesCommand() *Command {
	fs := flag.NewFlagSet("rules", flag.ExitOnError)

	return &Command{
		Name:        "rules",
		Description: "List the rule catalog",
		Flags:       fs,
		Run: func(args []string) error {
			if err := fs.Parse(args); err != nil {
				return err
			}
			cat := rules.Default()
			fmt.Printf("Registered rules (%d):\n\n", cat.Len())
			for _, r := range cat.All() {
				fmt.Printf("  %-30s [%s]\n    %s\n", r.ID, r.Severity, r.Title)
			}
			return nil
		},
	}
}
