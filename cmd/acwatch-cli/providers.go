package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/joshp123/acwatch/internal/core"
)

const providersPath = "/api/providers"

func newProvidersCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "providers",
		Short: "Inspect the providers compiled into the bridge",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List providers with their health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := fetchProviders(cmd.Context(), flags.url)
			if err != nil {
				return err
			}
			out := outputMode{out: cmd.OutOrStdout(), json: flags.json}
			if out.json {
				return out.printJSON(list)
			}
			rows := [][]string{{"ID", "NAME", "VERSION", "STATUS"}}
			for _, p := range list {
				rows = append(rows, []string{p.ProviderID, p.DisplayName, p.Version, p.Status})
			}
			return out.table(rows)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "describe <provider>",
		Short: "Show one provider by id or display name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := fetchProviders(cmd.Context(), flags.url)
			if err != nil {
				return err
			}
			p, err := resolveProvider(args[0], list)
			if err != nil {
				return err
			}
			out := outputMode{out: cmd.OutOrStdout(), json: flags.json}
			if out.json {
				return out.printJSON(p)
			}
			rows := [][]string{
				{"id", p.ProviderID},
				{"name", p.DisplayName},
				{"version", p.Version},
				{"status", p.Status},
			}
			if p.HealthMessage != "" {
				rows = append(rows, []string{"message", p.HealthMessage})
			}
			for _, d := range p.Dashboards {
				rows = append(rows, []string{"dashboard", d})
			}
			return out.table(rows)
		},
	})

	return cmd
}

func fetchProviders(ctx context.Context, baseURL string) ([]core.ProviderSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(baseURL, "/")+providersPath, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list providers: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("list providers: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var list []core.ProviderSummary
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("decode providers: %w", err)
	}
	return list, nil
}
