package main

import (
	"fmt"
	"os"

	"github.com/cloudzeus/kimoncrm-sub005/common/database"
	"github.com/cloudzeus/kimoncrm-sub005/internal/events"
	"github.com/cloudzeus/kimoncrm-sub005/internal/repository"
	"github.com/cloudzeus/kimoncrm-sub005/internal/service"

	"github.com/spf13/cobra"
)

var (
	bomSurveyID string
	bomOut      string
)

// bomCmd writes a survey's BOM workbook without going through the API
var bomCmd = &cobra.Command{
	Use:   "bom",
	Short: "Write a survey's bill of materials to an xlsx file",
	RunE:  runBOM,
}

func init() {
	bomCmd.Flags().StringVar(&bomSurveyID, "survey", "", "Site survey id (required)")
	bomCmd.Flags().StringVarP(&bomOut, "out", "o", "", "Output file (default: generated name in the current directory)")
	_ = bomCmd.MarkFlagRequired("survey")
}

func runBOM(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()

	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer database.Close(db)

	surveys := repository.NewPostgresSiteSurveysRepository(db)
	cabling := service.NewCablingService(surveys, repository.NewPostgresCablingRepository(db),
		repository.NewPostgresProductsRepository(db), events.Nop{}, logger)
	docs := service.NewDocumentService(surveys, repository.NewPostgresCustomersRepository(db),
		repository.NewPostgresDocumentsRepository(db), cabling, nil, cfg.Company, events.Nop{}, logger)

	doc, err := docs.RenderBOM(cmd.Context(), bomSurveyID)
	if err != nil {
		return err
	}
	out := bomOut
	if out == "" {
		out = doc.FileName
	}
	if err := os.WriteFile(out, doc.Data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", out, len(doc.Data))
	return nil
}
