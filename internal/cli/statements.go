package cli

import (
	"net/url"

	"github.com/spf13/cobra"
)

func newStatementsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "statements",
		Aliases: []string{"st"},
		Short:   "Statement queries",
	}

	cmd.AddCommand(newStatementGetter[StatementList]("list", "All statements in random order", "/statements"))
	cmd.AddCommand(newStatementGetter[TextList]("texts", "Statement texts in random order", "/statements-only"))
	cmd.AddCommand(newStatementGetter[IDList]("ids", "All statement ids", "/statements/id"))
	cmd.AddCommand(newStatementGetter[RandomStatement]("random", "One random statement", "/random"))
	cmd.AddCommand(newStatementGetter[StatementList]("levels", "All statements sorted by level", "/statements/levels"))
	cmd.AddCommand(newStatementLevelCmd())
	cmd.AddCommand(newStatementGetCmd())

	return cmd
}

// newStatementGetter builds an argument-free command that GETs path into a fresh T
func newStatementGetter[T any](use, short, path string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result T
			if err := client.Get(path, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newStatementLevelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "level <level>",
		Short: "Statements of one level",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result StatementList
			if err := client.Get("/statements/levels/"+url.PathEscape(args[0]), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newStatementGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <statementId>",
		Short: "One statement by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result SingleStatement
			if err := client.Get("/statements/statementId/"+url.PathEscape(args[0]), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}
