package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fullstorydev/grpcurl"
	"github.com/jhump/protoreflect/grpcreflect"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/encoding/protojson"
)

const dialTimeout = 10 * time.Second

func dial(ctx context.Context, addr string) (*grpc.ClientConn, error) {
	ctx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	conn, err := grpcurl.BlockingDial(ctx, "tcp", addr, insecure.NewCredentials())
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return conn, nil
}

func newHealthCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "health [service]",
		Short: "Check bridge health over gRPC (empty service means overall)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := dial(cmd.Context(), flags.grpcAddr)
			if err != nil {
				return err
			}
			defer conn.Close()

			service := ""
			if len(args) == 1 {
				service = args[0]
			}
			resp, err := healthpb.NewHealthClient(conn).Check(cmd.Context(), &healthpb.HealthCheckRequest{Service: service})
			if err != nil {
				return fmt.Errorf("health check: %w", err)
			}
			if flags.json {
				data, err := protojson.Marshal(resp)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), resp.GetStatus().String())
			return err
		},
	}
}

func newServicesCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "services",
		Short: "List gRPC services exposed via reflection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conn, err := dial(cmd.Context(), flags.grpcAddr)
			if err != nil {
				return err
			}
			defer conn.Close()

			services, err := grpcurl.ListServices(reflectionSource(cmd.Context(), conn))
			if err != nil {
				return fmt.Errorf("list services: %w", err)
			}
			for _, svc := range services {
				fmt.Fprintln(cmd.OutOrStdout(), svc)
			}
			return nil
		},
	}
}

func newMethodsCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "methods <service>",
		Short: "List methods of a gRPC service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := dial(cmd.Context(), flags.grpcAddr)
			if err != nil {
				return err
			}
			defer conn.Close()

			methods, err := grpcurl.ListMethods(reflectionSource(cmd.Context(), conn), args[0])
			if err != nil {
				return fmt.Errorf("list methods: %w", err)
			}
			for _, m := range methods {
				fmt.Fprintln(cmd.OutOrStdout(), m)
			}
			return nil
		},
	}
}

func newCallCmd(flags *globalFlags) *cobra.Command {
	var data string

	cmd := &cobra.Command{
		Use:   "call <service/method>",
		Short: "Invoke a gRPC method with a JSON request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := dial(cmd.Context(), flags.grpcAddr)
			if err != nil {
				return err
			}
			defer conn.Close()

			var reader io.Reader = strings.NewReader(data)
			if data == "" {
				if isStdinTerminal() {
					reader = strings.NewReader("{}")
				} else {
					reader = cmd.InOrStdin()
				}
			}

			descSource := reflectionSource(cmd.Context(), conn)
			parser, formatter, err := grpcurl.RequestParserAndFormatter(grpcurl.FormatJSON, descSource, reader, grpcurl.FormatOptions{})
			if err != nil {
				return fmt.Errorf("request parser: %w", err)
			}
			handler := grpcurl.NewDefaultEventHandler(cmd.OutOrStdout(), descSource, formatter, false)
			if err := grpcurl.InvokeRPC(cmd.Context(), descSource, conn, args[0], nil, handler, parser.Next); err != nil {
				return fmt.Errorf("invoke %s: %w", args[0], err)
			}
			if handler.Status != nil && handler.Status.Err() != nil {
				return handler.Status.Err()
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&data, "data", "d", "", "JSON request body (default: stdin or {})")
	return cmd
}

func reflectionSource(ctx context.Context, conn *grpc.ClientConn) grpcurl.DescriptorSource {
	client := grpcreflect.NewClientAuto(ctx, conn)
	return grpcurl.DescriptorSourceFromServer(ctx, client)
}

func isStdinTerminal() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return true
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
