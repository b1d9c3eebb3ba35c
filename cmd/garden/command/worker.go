package command

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/pixil98/go-garden/internal/commands"
	"github.com/pixil98/go-garden/internal/driver"
	"github.com/pixil98/go-garden/internal/entity"
	"github.com/pixil98/go-garden/internal/game"
	"github.com/pixil98/go-garden/internal/listener"
	"github.com/pixil98/go-garden/internal/messaging"
	"github.com/pixil98/go-garden/internal/persistence"
	"github.com/pixil98/go-garden/internal/player"
	"github.com/pixil98/go-garden/internal/protocol"
	"github.com/pixil98/go-garden/internal/tuning"
	"github.com/pixil98/go-garden/internal/voxel"
	"github.com/pixil98/go-service"
)

const (
	defaultGrowthTick  = 16 * time.Millisecond
	defaultScanTick    = 100 * time.Millisecond
	defaultSessionTick = time.Second
)

func BuildWorkers(config interface{}) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}
	ctx := context.Background()

	tun, err := tuning.Load(cfg.TuningPath)
	if err != nil {
		return nil, fmt.Errorf("loading tuning: %w", err)
	}

	lattice, err := voxel.LoadMap(cfg.MapPath)
	if err != nil {
		return nil, fmt.Errorf("loading map: %w", err)
	}
	slog.Info("loaded map", "blocks", lattice.Count(), "chunks", len(lattice.ChunkKeys()))

	plants, err := cfg.Assets.Plants.BuildAssetStore()
	if err != nil {
		return nil, fmt.Errorf("loading plants: %w", err)
	}
	catalog := game.NewCatalog(plants.GetAll())

	store, err := cfg.Persistence.Open()
	if err != nil {
		return nil, fmt.Errorf("opening persistence: %w", err)
	}

	natsServer, err := cfg.Nats.buildNatsServer()
	if err != nil {
		return nil, fmt.Errorf("creating nats server: %w", err)
	}
	publisher := messaging.NewNatsPublisher(natsServer)

	entities := entity.NewManager()
	entities.AddObserver(game.NewEntityBroadcaster(publisher))

	world := game.NewWorldState(natsServer, publisher, lattice, entities, catalog,
		game.WithTuning(tun),
		game.WithStore(store),
	)
	if err := world.LoadGlobal(ctx); err != nil {
		return nil, fmt.Errorf("loading global game data: %w", err)
	}

	cmdHandler, err := buildCommandHandler(cfg, world)
	if err != nil {
		return nil, err
	}

	decoder, err := protocol.NewDecoder(protocol.WithInventorySlots(tun.InventorySlots))
	if err != nil {
		return nil, fmt.Errorf("creating protocol decoder: %w", err)
	}

	var accountOpts []player.AccountsOpt
	if cfg.Sessions.BcryptCost > 0 {
		accountOpts = append(accountOpts, player.WithBcryptCost(cfg.Sessions.BcryptCost))
	}
	var pmOpts []player.PlayerManagerOpt
	if cfg.Sessions.InputRate > 0 {
		burst := cfg.Sessions.InputBurst
		if burst == 0 {
			burst = int(cfg.Sessions.InputRate) * 2
		}
		pmOpts = append(pmOpts, player.WithInputRate(rate.Limit(cfg.Sessions.InputRate), burst))
	}
	pm := player.NewPlayerManager(world, cmdHandler, player.NewAccounts(store, accountOpts...), pmOpts...)
	cm := listener.NewConnectionManager(pm, listener.WithMaxConnections(cfg.MaxConnections))

	// Create Listeners
	listeners := make(service.WorkerList, len(cfg.Listeners))
	for i, l := range cfg.Listeners {
		lw, err := l.BuildListener(cm, decoder)
		if err != nil {
			return nil, fmt.Errorf("creating listener %d: %w", i, err)
		}
		listeners[fmt.Sprintf("listener-%d", i)] = lw
	}

	drivers, err := buildDrivers(cfg, world, store)
	if err != nil {
		return nil, err
	}

	workers := service.WorkerList{
		"nats": natsServer,
		"sessions": &storeCloser{
			sessions: &afterReady{ready: natsServer.Ready(), worker: &listeners},
			world:    world,
			store:    store,
		},
	}
	for name, d := range drivers {
		workers[name] = d
	}
	return workers, nil
}

func buildCommandHandler(cfg *Config, world *game.WorldState) (*commands.Handler, error) {
	cmds, err := cfg.Assets.Commands.BuildAssetStore()
	if err != nil {
		return nil, fmt.Errorf("loading commands: %w", err)
	}

	h := commands.NewHandler(cmds)
	factories := map[string]commands.HandlerFactory{
		"action":  commands.NewActionHandlerFactory(world),
		"buy":     commands.NewBuyHandlerFactory(world),
		"hold":    commands.NewHoldHandlerFactory(world),
		"rocket":  commands.NewRocketHandlerFactory(world),
		"goto":    commands.NewGotoHandlerFactory(world),
		"who":     commands.NewWhoHandlerFactory(world),
		"message": commands.NewMessageHandlerFactory(world),
		"save":    commands.NewSaveHandlerFactory(world),
		"quit":    commands.NewQuitHandlerFactory(world),
		"help":    commands.NewHelpHandlerFactory(cmds, world),
	}
	for name, f := range factories {
		if err := h.RegisterFactory(name, f); err != nil {
			return nil, fmt.Errorf("registering %s handler: %w", name, err)
		}
	}

	if err := h.CompileAll(); err != nil {
		return nil, fmt.Errorf("compiling commands: %w", err)
	}
	return h, nil
}

// buildDrivers creates one driver per tick rate so slow work never delays growth.
func buildDrivers(cfg *Config, world *game.WorldState, store persistence.Store) (map[string]*driver.Driver, error) {
	growthTick, err := optionalDuration(cfg.Ticks.Growth, defaultGrowthTick)
	if err != nil {
		return nil, fmt.Errorf("parsing ticks.growth: %w", err)
	}
	scanTick, err := optionalDuration(cfg.Ticks.Scan, defaultScanTick)
	if err != nil {
		return nil, fmt.Errorf("parsing ticks.scan: %w", err)
	}
	sessionTick, err := optionalDuration(cfg.Ticks.Session, defaultSessionTick)
	if err != nil {
		return nil, fmt.Errorf("parsing ticks.session: %w", err)
	}

	var sessionOpts []game.SessionTickerOpt
	if d, err := optionalDuration(cfg.Sessions.IdleTimeout, 0); err == nil && d > 0 {
		sessionOpts = append(sessionOpts, game.WithIdleTimeout(d))
	}
	if d, err := optionalDuration(cfg.Sessions.SaveInterval, 0); err == nil && d > 0 {
		sessionOpts = append(sessionOpts, game.WithSaveInterval(d))
	}

	housekeeping := []driver.Ticker{game.NewSessionTicker(world, sessionOpts...)}
	if cfg.Snapshots.Enabled() {
		housekeeping = append(housekeeping, cfg.Snapshots.buildSnapshotter(store))
	}

	return map[string]*driver.Driver{
		"growth-driver":  driver.NewDriver([]driver.Ticker{game.NewGrowthTicker(world)}, driver.WithTickLength(growthTick)),
		"scan-driver":    driver.NewDriver([]driver.Ticker{game.NewScanTicker(world)}, driver.WithTickLength(scanTick)),
		"session-driver": driver.NewDriver(housekeeping, driver.WithTickLength(sessionTick)),
	}, nil
}

// afterReady holds a worker back until ready is closed.
type afterReady struct {
	ready  <-chan struct{}
	worker service.Worker
}

func (a *afterReady) Start(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return nil
	case <-a.ready:
	}
	return a.worker.Start(ctx)
}

// storeCloser runs the listeners and, once every session has left, saves
// everything and closes the store.
type storeCloser struct {
	sessions service.Worker
	world    *game.WorldState
	store    persistence.Store
}

func (s *storeCloser) Start(ctx context.Context) error {
	err := s.sessions.Start(ctx)

	s.world.SaveAll(context.WithoutCancel(ctx))
	if cerr := s.store.Close(); cerr != nil {
		slog.ErrorContext(ctx, "closing store", "error", cerr)
		if err == nil {
			err = fmt.Errorf("closing store: %w", cerr)
		}
	}
	return err
}
