package main

import (
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/dreamware/julea/internal/batch"
	"github.com/dreamware/julea/internal/config"
	"github.com/dreamware/julea/internal/kvclient"
	"github.com/dreamware/julea/internal/objectclient"
	"github.com/dreamware/julea/internal/runtime"
	"github.com/dreamware/julea/internal/semantics"
	"github.com/spf13/cobra"
)

func loadConfig() (*config.Configuration, error) {
	if configFile != "" {
		return config.LoadFile(configFile)
	}
	return config.Load()
}

func newClientRuntime(cfg *config.Configuration) (*runtime.Runtime, error) {
	return runtime.New(runtime.Options{Config: cfg})
}

func objectCmd() *cobra.Command {
	var count, size int

	cmd := &cobra.Command{
		Use:   "object",
		Short: "Benchmark object create/write/read against the configured object servers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			rt, err := newClientRuntime(cfg)
			if err != nil {
				return err
			}
			defer rt.Close()

			sem := semantics.Default()
			payload := make([]byte, size)
			_, _ = rand.Read(payload)

			start := time.Now()
			for i := 0; i < count; i++ {
				name := fmt.Sprintf("bench-%d", i)
				h := objectclient.NewHandle("bench", name, cfg.ObjectServerCount())

				createBatch := batch.New(sem)
				objectclient.Create(createBatch, h)
				if err := rt.Engine.Execute(createBatch); err != nil {
					return fmt.Errorf("object create %s: %w", name, err)
				}
				createBatch.Drain()

				var written atomic.Uint64
				writeBatch := batch.New(sem)
				objectclient.Write(writeBatch, h, payload, 0, &written)
				if err := rt.Engine.Execute(writeBatch); err != nil {
					return fmt.Errorf("object write %s: %w", name, err)
				}
				writeBatch.Drain()

				buf := make([]byte, size)
				var read atomic.Uint64
				readBatch := batch.New(sem)
				objectclient.Read(readBatch, h, buf, 0, &read)
				if err := rt.Engine.Execute(readBatch); err != nil {
					return fmt.Errorf("object read %s: %w", name, err)
				}
				readBatch.Drain()
			}
			elapsed := time.Since(start)

			fmt.Printf("objects=%d size=%d total=%s avg=%s\n", count, size, elapsed, elapsed/time.Duration(max(count, 1)))
			return nil
		},
	}

	cmd.Flags().IntVar(&count, "count", 100, "number of objects to create/write/read")
	cmd.Flags().IntVar(&size, "size", 4096, "payload size in bytes")
	return cmd
}

func kvCmd() *cobra.Command {
	var count, size int

	cmd := &cobra.Command{
		Use:   "kv",
		Short: "Benchmark KV put/get against the configured kv servers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			rt, err := newClientRuntime(cfg)
			if err != nil {
				return err
			}
			defer rt.Close()

			sem := semantics.Default()
			payload := make([]byte, size)
			_, _ = rand.Read(payload)

			start := time.Now()
			for i := 0; i < count; i++ {
				key := fmt.Sprintf("bench-%d", i)
				h := kvclient.NewHandle("bench", key, cfg.KVServerCount())

				putBatch := batch.New(sem)
				kvclient.Put(putBatch, h, payload)
				if err := rt.Engine.Execute(putBatch); err != nil {
					return fmt.Errorf("kv put %s: %w", key, err)
				}
				putBatch.Drain()

				var value []byte
				var found bool
				getBatch := batch.New(sem)
				kvclient.Get(getBatch, h, &value, &found)
				if err := rt.Engine.Execute(getBatch); err != nil {
					return fmt.Errorf("kv get %s: %w", key, err)
				}
				getBatch.Drain()
			}
			elapsed := time.Since(start)

			fmt.Printf("keys=%d size=%d total=%s avg=%s\n", count, size, elapsed, elapsed/time.Duration(max(count, 1)))
			return nil
		},
	}

	cmd.Flags().IntVar(&count, "count", 100, "number of keys to put/get")
	cmd.Flags().IntVar(&size, "size", 256, "value size in bytes")
	return cmd
}
