package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const (
	defaultURL      = "http://127.0.0.1:8080"
	defaultGRPCAddr = "127.0.0.1:9000"
)

type globalFlags struct {
	url      string
	grpcAddr string
	json     bool
}

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "acwatch-cli",
		Short:         "Live AC unit status from an acwatch bridge",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.url, "url", envOrDefault("ACWATCH_URL", defaultURL), "bridge base URL (env ACWATCH_URL)")
	root.PersistentFlags().StringVar(&flags.grpcAddr, "grpc", envOrDefault("ACWATCH_GRPC_ADDR", defaultGRPCAddr), "bridge gRPC address (env ACWATCH_GRPC_ADDR)")
	root.PersistentFlags().BoolVar(&flags.json, "json", false, "print JSON instead of a table")

	root.AddCommand(
		newDashCmd(flags),
		newUnitsCmd(flags),
		newProvidersCmd(flags),
		newHealthCmd(flags),
		newServicesCmd(flags),
		newMethodsCmd(flags),
		newCallCmd(flags),
	)
	return root
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
