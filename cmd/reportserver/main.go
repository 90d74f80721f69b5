// Command reportserver runs the report service the puzzleflow clients deliver results to.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cbodonnell/puzzleflow/pkg/api"
	authproviders "github.com/cbodonnell/puzzleflow/pkg/auth/providers"
	"github.com/cbodonnell/puzzleflow/pkg/game/types"
	"github.com/cbodonnell/puzzleflow/pkg/log"
	"github.com/cbodonnell/puzzleflow/pkg/repositories"
	"github.com/cbodonnell/puzzleflow/pkg/version"
	"github.com/spf13/cobra"
)

const (
	authStatic   = "static"
	authFirebase = "firebase"
)

var (
	port     int
	dataURL  string
	logLevel string

	authMode            string
	staticTokens        []string
	firebaseProjectID   string
	firebaseAPIKey      string
	firebaseCredentials string

	tlsCertFile string
	tlsKeyFile  string

	startingHints int
	startingLives int
	startingTime  int
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "reportserver",
		Short:        "Puzzleflow report service",
		Version:      version.Get(),
		SilenceUsage: true,
	}
	rootCmd.AddCommand(newServeCmd())
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the report endpoints",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	cmd.Flags().IntVar(&port, "port", 8080, "port to listen on")
	cmd.Flags().StringVar(&dataURL, "data-url", os.Getenv("DATABASE_URL"), "memory://, sqlite://<path> or postgres://... (default: $DATABASE_URL)")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level")
	cmd.Flags().StringVar(&authMode, "auth", authStatic, "token verification: static or firebase")
	cmd.Flags().StringSliceVar(&staticTokens, "token", nil, "static token as token=uid, repeatable")
	cmd.Flags().StringVar(&firebaseProjectID, "firebase-project", "", "Firebase project id")
	cmd.Flags().StringVar(&firebaseAPIKey, "firebase-api-key", "", "Firebase API key")
	cmd.Flags().StringVar(&firebaseCredentials, "firebase-credentials", "", "Firebase service account key file")
	cmd.Flags().StringVar(&tlsCertFile, "tls-cert", "", "TLS certificate file")
	cmd.Flags().StringVar(&tlsKeyFile, "tls-key", "", "TLS key file")
	cmd.Flags().IntVar(&startingHints, "starting-hints", 3, "extra hints granted to new users")
	cmd.Flags().IntVar(&startingLives, "starting-lives", 3, "extra lives granted to new users")
	cmd.Flags().IntVar(&startingTime, "starting-time", 0, "extra seconds granted to new users")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	parsedLogLevel, err := log.ParseLogLevel(logLevel)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %v", err)
	}
	log.SetDefaultLogger(log.New(os.Stdout, "", log.DefaultLoggerFlag, parsedLogLevel))
	log.Info("Log level set to %s", parsedLogLevel)
	log.Info("Starting report server version %s", version.Get())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	authProvider, err := newAuthProvider(ctx)
	if err != nil {
		return err
	}

	repository, err := repositories.NewRepository(ctx, dataURL)
	if err != nil {
		return fmt.Errorf("failed to open repository: %v", err)
	}
	defer repository.Close(context.Background())

	var tls *api.TLSConfig
	if tlsCertFile != "" && tlsKeyFile != "" {
		tls = &api.TLSConfig{CertFile: tlsCertFile, KeyFile: tlsKeyFile}
	}

	server := api.NewAPIServer(api.NewAPIServerOptions{
		Port:         port,
		TLS:          tls,
		AuthProvider: authProvider,
		Repository:   repository,
		StartingInventory: types.Inventory{
			ExtraHintCount:   startingHints,
			ExtraLiveCount:   startingLives,
			ExtraTimeSeconds: startingTime,
		},
	})
	go server.Start()

	<-ctx.Done()
	log.Info("Shutting down report server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Stop(shutdownCtx)
}

func newAuthProvider(ctx context.Context) (authproviders.AuthProvider, error) {
	switch authMode {
	case authStatic:
		tokens, err := parseTokens(staticTokens)
		if err != nil {
			return nil, err
		}
		if len(tokens) == 0 {
			log.Warn("No static tokens configured, every report will be rejected")
		}
		return authproviders.NewStaticAuthProvider(tokens), nil
	case authFirebase:
		provider, err := authproviders.NewFirebaseAuthProvider(ctx, authproviders.NewFirebaseAuthProviderOptions{
			ProjectID:       firebaseProjectID,
			APIKey:          firebaseAPIKey,
			CredentialsFile: firebaseCredentials,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create firebase auth provider: %v", err)
		}
		return provider, nil
	}
	return nil, fmt.Errorf("unknown auth mode: %s", authMode)
}

func parseTokens(values []string) (map[string]string, error) {
	tokens := make(map[string]string, len(values))
	for _, value := range values {
		token, uid, ok := strings.Cut(value, "=")
		if !ok || token == "" || uid == "" {
			return nil, fmt.Errorf("invalid token %q, expected token=uid", value)
		}
		tokens[token] = uid
	}
	return tokens, nil
}
