package runtime

import (
	"fmt"
	"net"
	stdruntime "runtime"
	"time"

	"github.com/dreamware/julea/internal/backend"
	"github.com/dreamware/julea/internal/backend/memory"
	"github.com/dreamware/julea/internal/backend/posix"
	"github.com/dreamware/julea/internal/batch"
	"github.com/dreamware/julea/internal/config"
	"github.com/dreamware/julea/internal/handle"
	"github.com/dreamware/julea/internal/pool"
	"github.com/dreamware/julea/internal/taskpool"
	"github.com/rs/zerolog/log"
)

const (
	healthCheckInterval = 5 * time.Second
	healthDialTimeout   = 2 * time.Second

	defaultPluginBuildDir   = "./build/backends"
	defaultPluginInstallDir = "/usr/lib/julea/backends"
)

// Options configures New. LocalObjectIndex/LocalKVIndex, when set, say this
// process also hosts the backend for that server index in-process, so
// operations addressing it dispatch locally instead of over the wire. A pure client process leaves
// both nil.
type Options struct {
	Config *config.Configuration

	LocalObjectIndex *uint32
	LocalKVIndex     *uint32

	// PluginBuildDir/PluginInstallDir override the dynamic-backend search
	// path, for tests. Defaults are used when empty.
	PluginBuildDir   string
	PluginInstallDir string
}

// Runtime is the single encapsulated handle everything else in this module
// is threaded through: configuration, pools, local backends, the task
// pool, and the batch engine.
type Runtime struct {
	Config *config.Configuration

	ObjectPool *pool.Pool
	KVPool     *pool.Pool

	objectHealth *pool.HealthMonitor
	kvHealth     *pool.HealthMonitor

	// ObjectBackend/KVBackend are non-nil only when this process hosts that
	// service's backend in-process (see Options.LocalObjectIndex/KVIndex).
	// A pure client leaves both nil.
	ObjectBackend backend.Object
	KVBackend     backend.KV

	Tasks  *taskpool.Pool
	Engine *batch.Engine
}

// New wires a Runtime from cfg: dials are lazy (the pools don't connect
// until first use), but any local backend named in cfg is loaded and
// initialized immediately, matching the upstream "backend load is part of
// init, not part of first request" contract.
func New(opts Options) (*Runtime, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, fmt.Errorf("runtime: Options.Config is required")
	}

	r := &Runtime{Config: cfg}

	r.ObjectPool = pool.New("object", cfg.ObjectServers, cfg.MaxConnections, tcpDial)
	r.KVPool = pool.New("kv", cfg.KVServers, cfg.MaxConnections, tcpDial)

	r.objectHealth = pool.NewHealthMonitor(cfg.ObjectServers, healthCheckInterval, healthDialTimeout)
	r.kvHealth = pool.NewHealthMonitor(cfg.KVServers, healthCheckInterval, healthDialTimeout)
	r.ObjectPool.AttachHealthMonitor(r.objectHealth)
	r.KVPool.AttachHealthMonitor(r.kvHealth)

	objectBackends := make(map[uint32]backend.Object)
	kvBackends := make(map[uint32]backend.KV)

	if opts.LocalObjectIndex != nil {
		ob, err := loadObjectBackend(cfg, opts)
		if err != nil {
			return nil, fmt.Errorf("runtime: loading object backend: %w", err)
		}
		r.ObjectBackend = ob
		objectBackends[*opts.LocalObjectIndex] = ob
	}

	if opts.LocalKVIndex != nil {
		kv, err := loadKVBackend(cfg, opts)
		if err != nil {
			return nil, fmt.Errorf("runtime: loading kv backend: %w", err)
		}
		r.KVBackend = kv
		kvBackends[*opts.LocalKVIndex] = kv
	}

	r.Tasks = taskpool.New(stdruntime.NumCPU())
	r.Engine = batch.NewEngine(batch.Dependencies{
		ObjectBackends: objectBackends,
		KVBackends:     kvBackends,
		ObjectPool:     r.ObjectPool,
		KVPool:         r.KVPool,
	}, r.Tasks)

	log.Info().
		Int("object-servers", len(cfg.ObjectServers)).
		Int("kv-servers", len(cfg.KVServers)).
		Bool("local-object-backend", r.ObjectBackend != nil).
		Bool("local-kv-backend", r.KVBackend != nil).
		Msg("runtime: initialized")

	return r, nil
}

// StartHealthMonitoring launches the background liveness checks for both
// server fleets. Callers that only ever run against an in-process backend
// (tests, single-node setups) can skip this.
func (r *Runtime) StartHealthMonitoring() {
	go r.objectHealth.Start(nil)
	go r.kvHealth.Start(nil)
}

// Close tears down everything New acquired: health monitors, idle pooled
// connections, the task pool, and local backends, in that order.
func (r *Runtime) Close() error {
	r.objectHealth.Stop()
	r.kvHealth.Stop()

	var firstErr error
	record := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	record(r.ObjectPool.Close())
	record(r.KVPool.Close())

	r.Tasks.Close()

	if r.ObjectBackend != nil {
		record(r.ObjectBackend.Fini())
	}
	if r.KVBackend != nil {
		record(r.KVBackend.Fini())
	}

	return firstErr
}

func tcpDial(addr string) (pool.Conn, error) {
	return net.Dial("tcp", addr)
}

func loadObjectBackend(cfg *config.Configuration, opts Options) (backend.Object, error) {
	switch cfg.Object.Backend {
	case "posix":
		ob := posix.New("")
		if err := ob.Init(cfg.Object.Path); err != nil {
			return nil, err
		}
		return ob, nil
	default:
		desc, err := backend.Load(pluginPaths(cfg.Object.Component, cfg.Object.Backend, opts), handle.KindObject)
		if err != nil {
			return nil, err
		}
		if err := desc.Object.Init(cfg.Object.Path); err != nil {
			return nil, err
		}
		return desc.Object, nil
	}
}

func loadKVBackend(cfg *config.Configuration, opts Options) (backend.KV, error) {
	switch cfg.KV.Backend {
	case "memory":
		kv := memory.New()
		if err := kv.Init(cfg.KV.Path); err != nil {
			return nil, err
		}
		return kv, nil
	default:
		desc, err := backend.Load(pluginPaths(cfg.KV.Component, cfg.KV.Backend, opts), handle.KindKV)
		if err != nil {
			return nil, err
		}
		if err := desc.KV.Init(cfg.KV.Path); err != nil {
			return nil, err
		}
		return desc.KV, nil
	}
}

func pluginPaths(component, name string, opts Options) []string {
	buildDir := opts.PluginBuildDir
	if buildDir == "" {
		buildDir = defaultPluginBuildDir
	}
	installDir := opts.PluginInstallDir
	if installDir == "" {
		installDir = defaultPluginInstallDir
	}
	return backend.BuildAndInstallPaths(buildDir, installDir, component, name)
}
