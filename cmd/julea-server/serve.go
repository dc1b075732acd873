package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dreamware/julea/internal/config"
	"github.com/dreamware/julea/internal/runtime"
	"github.com/dreamware/julea/internal/server"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	var (
		objectIndex   int
		kvIndex       int
		metricsListen string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Load this process's configured backend(s) and serve them over the wire",
		RunE: func(cmd *cobra.Command, args []string) error {
			hasObject := cmd.Flags().Changed("object-index")
			hasKV := cmd.Flags().Changed("kv-index")
			if !hasObject && !hasKV {
				return fmt.Errorf("serve: at least one of --object-index or --kv-index is required")
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			opts := runtime.Options{Config: cfg}
			if hasObject {
				idx := uint32(objectIndex)
				if idx >= cfg.ObjectServerCount() {
					return fmt.Errorf("serve: --object-index %d out of range (%d configured)", idx, cfg.ObjectServerCount())
				}
				opts.LocalObjectIndex = &idx
			}
			if hasKV {
				idx := uint32(kvIndex)
				if idx >= cfg.KVServerCount() {
					return fmt.Errorf("serve: --kv-index %d out of range (%d configured)", idx, cfg.KVServerCount())
				}
				opts.LocalKVIndex = &idx
			}

			rt, err := runtime.New(opts)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			defer rt.Close()
			rt.StartHealthMonitoring()

			var objSrv, kvSrv *server.Server
			if rt.ObjectBackend != nil {
				addr := cfg.ObjectServers[objectIndex]
				l, err := net.Listen("tcp", addr)
				if err != nil {
					return fmt.Errorf("serve: listening for object traffic on %s: %w", addr, err)
				}
				objSrv = server.NewObjectServer(rt.ObjectBackend)
				go func() {
					if err := objSrv.Serve(l); err != nil {
						log.Error().Err(err).Msg("julea-server: object listener stopped")
					}
				}()
				log.Info().Str("addr", addr).Msg("julea-server: serving object backend")
			}
			if rt.KVBackend != nil {
				addr := cfg.KVServers[kvIndex]
				l, err := net.Listen("tcp", addr)
				if err != nil {
					return fmt.Errorf("serve: listening for kv traffic on %s: %w", addr, err)
				}
				kvSrv = server.NewKVServer(rt.KVBackend)
				go func() {
					if err := kvSrv.Serve(l); err != nil {
						log.Error().Err(err).Msg("julea-server: kv listener stopped")
					}
				}()
				log.Info().Str("addr", addr).Msg("julea-server: serving kv backend")
			}

			metricsSrv := server.NewMetricsServer(metricsListen)
			go func() {
				log.Info().Str("addr", metricsListen).Msg("julea-server: serving metrics")
				if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Error().Err(err).Msg("julea-server: metrics listener stopped")
				}
			}()

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
			<-stop

			log.Info().Msg("julea-server: shutting down")
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if objSrv != nil {
				if err := objSrv.Shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("julea-server: object listener shutdown error")
				}
			}
			if kvSrv != nil {
				if err := kvSrv.Shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("julea-server: kv listener shutdown error")
				}
			}
			if err := metricsSrv.Shutdown(ctx); err != nil {
				log.Error().Err(err).Msg("julea-server: metrics listener shutdown error")
			}

			return nil
		},
	}

	cmd.Flags().IntVar(&objectIndex, "object-index", 0, "object server index this process hosts")
	cmd.Flags().IntVar(&kvIndex, "kv-index", 0, "kv server index this process hosts")
	cmd.Flags().StringVar(&metricsListen, "metrics-listen", ":9090", "address for the /metrics HTTP side channel")

	return cmd
}

func loadConfig() (*config.Configuration, error) {
	if configFile != "" {
		return config.LoadFile(configFile)
	}
	return config.Load()
}
