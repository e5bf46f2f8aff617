package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	surveysDomain "github.com/checktick/surveyvault/internal/surveys/domain"
	surveysUseCase "github.com/checktick/surveyvault/internal/surveys/usecase"
)

// RunCreateOrganization creates an organization with a fresh escrow master
// key. The master key never leaves the service; only the organization ID is
// printed.
//
// Requirements: Database must be migrated and accessible.
func RunCreateOrganization(
	ctx context.Context,
	organizationUseCase surveysUseCase.OrganizationUseCase,
	logger *slog.Logger,
	name string,
	format string,
	io IOTuple,
) error {
	logger.Info("creating new organization", slog.String("name", name))

	org, err := organizationUseCase.Create(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to create organization: %w", err)
	}

	if format == "json" {
		outputOrganizationJSON(org, io.Writer)
	} else {
		outputOrganizationText(org, io.Writer)
	}

	logger.Info("organization created successfully",
		slog.String("organization_id", org.ID.String()),
		slog.String("name", name),
	)

	return nil
}

// outputOrganizationText outputs the result in human-readable text format.
func outputOrganizationText(org *surveysDomain.Organization, writer io.Writer) {
	_, _ = fmt.Fprintln(writer, "\nOrganization created successfully!")
	_, _ = fmt.Fprintf(writer, "Organization ID: %s\n", org.ID.String())
	_, _ = fmt.Fprintf(writer, "Name: %s\n", org.Name)
}

// outputOrganizationJSON outputs the result in JSON format for machine consumption.
func outputOrganizationJSON(org *surveysDomain.Organization, writer io.Writer) {
	result := map[string]string{
		"organization_id": org.ID.String(),
		"name":            org.Name,
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "failed to marshal JSON: %v\n", err)
		return
	}

	_, _ = fmt.Fprintln(writer, string(jsonBytes))
}
