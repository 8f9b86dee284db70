package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fardannozami/faccao-bot/internal/app/usecase"
)

var rankingCmd = &cobra.Command{
	Use:   "ranking",
	Short: "Print the current weekly ranking",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer app.Close()

		text, err := usecase.NewGetRankingUsecase(app.Deposits).Execute(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	},
}
