package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/order-invoicer/internal/config"
	"github.com/ginjaninja78/order-invoicer/internal/pdfwriter"
	"github.com/ginjaninja78/order-invoicer/internal/resolver"
	"github.com/ginjaninja78/order-invoicer/internal/server"
)

var (
	serveHost string
	servePort int
)

// serveCmd starts the interactive HTTP service.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the interactive HTTP service",
	Long: `The serve command starts a JSON API for uploading an order file, choosing
rows, editing branding and downloading the generated invoices as a zip
archive or one by one.

Uploads and generated invoices are kept in memory and expire after the
configured session TTL.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := appConfig
		if cmd.Flags().Changed("host") {
			cfg.Server.Host = serveHost
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = servePort
		}
		if cmd.Flags().Changed("branding") {
			cfg.BrandingFile = brandingFile
		}

		if !verbose {
			gin.SetMode(gin.ReleaseMode)
		}

		store := config.NewBrandingStore(cfg.BrandingFile)
		srv := server.New(server.Options{
			Config:        cfg.Server,
			BrandingStore: store,
			Resolver:      resolver.New(cfg.ColumnAliases),
			PDF:           pdfwriter.Options{LogoPath: cfg.LogoFile, WrapWidth: cfg.AddressWrapWidth},
			Concurrency:   cfg.MaxConcurrency,
			Logger:        appLogger,
		})

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Printf("Order Invoicer listening on http://%s\n", srv.Address())
		fmt.Printf("Branding store: %s\n", store.Path())
		return srv.Start(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveHost, "host", "", "Listen host (default from config)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Listen port (default from config)")
	serveCmd.Flags().StringVar(&brandingFile, "branding", "", "Branding JSON store")
}
