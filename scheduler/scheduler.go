package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/jvmmap/supersrg"
	"github.com/jvmmap/supersrg/fetch"
)

// Sources bundles the external-collaborator fetchers the scheduler's
// primitive targets pull from.
type Sources struct {
	Srg    fetch.SrgFetcher
	Mcp    fetch.McpFetcher
	Spigot fetch.SpigotFetcher
}

// Config parameterizes a single computation run.
type Config struct {
	McVersion       string
	McpVersion      string
	BuildDataCommit string
	NumWorkers      int
	Logger          *zap.Logger
	Metrics         *Metrics
}

// Computer resolves a requested set of targets, each exactly once,
// setting a target aside (its worker moves on to other queued targets)
// until its dependencies are present and re-queuing it then, and
// cancelling the whole run on the first hard failure.
type Computer struct {
	sources Sources
	cfg     Config

	mu             sync.Mutex
	cond           *sync.Cond
	remaining      []Target
	waiters        map[Target][]Target
	waitingTargets map[Target]map[Target]bool
	workerCount    int
	done           bool
	failed         int32

	resultsMu sync.RWMutex
	results   map[Target]supersrg.MappingSnapshot
}

// NewComputer constructs a Computer for a single Run. cfg.NumWorkers
// defaults to 2 when zero or negative, matching the range applier's own
// small default.
func NewComputer(sources Sources, cfg Config) *Computer {
	if cfg.NumWorkers <= 0 {
		cfg.NumWorkers = 2
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	c := &Computer{sources: sources, cfg: cfg}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// Run computes every target in requested (and their transitive
// dependencies) and returns a map from each requested target to its
// snapshot. A hard error from any dependency aborts the whole run.
func (c *Computer) Run(ctx context.Context, requested []Target) (map[Target]supersrg.MappingSnapshot, error) {
	c.waiters = make(map[Target][]Target)
	c.waitingTargets = make(map[Target]map[Target]bool)
	c.results = make(map[Target]supersrg.MappingSnapshot)
	c.remaining = nil
	c.done = false
	atomic.StoreInt32(&c.failed, 0)

	for _, t := range requested {
		if _, ok := c.waiters[t]; !ok {
			c.waiters[t] = []Target{}
			c.remaining = append(c.remaining, t)
		}
	}
	c.workerCount = c.cfg.NumWorkers

	var wg sync.WaitGroup
	var errMu sync.Mutex
	var firstErr error
	for i := 0; i < c.cfg.NumWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := c.workerLoop(ctx); err != nil {
				errMu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				errMu.Unlock()
			}
		}()
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	out := make(map[Target]supersrg.MappingSnapshot, len(requested))
	c.resultsMu.RLock()
	for _, t := range requested {
		out[t] = c.results[t]
	}
	c.resultsMu.RUnlock()
	return out, nil
}

func (c *Computer) workerLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		c.mu.Lock()
		if len(c.remaining) == 0 {
			if c.done {
				c.mu.Unlock()
				return nil
			}
			c.workerCount--
			if c.workerCount == 0 {
				c.done = true
				c.cond.Broadcast()
				c.mu.Unlock()
				return nil
			}
			c.cond.Wait()
			c.workerCount++
			c.mu.Unlock()
			continue
		}
		target := c.remaining[0]
		c.remaining = c.remaining[1:]
		c.mu.Unlock()

		c.cfg.Logger.Debug("computing target", zap.String("target", target.String()))

		result, deps, err := c.tryCompute(ctx, target)
		if err != nil {
			if atomic.CompareAndSwapInt32(&c.failed, 0, 1) {
				c.cfg.Logger.Error("target failed", zap.String("target", target.String()), zap.Error(err))
				c.mu.Lock()
				c.done = true
				c.cond.Broadcast()
				c.mu.Unlock()
				return &DependencyFailureError{Target: target, Cause: err}
			}
			return nil
		}

		if deps != nil {
			c.cfg.Logger.Debug("target suspended", zap.String("target", target.String()), zap.Int("deps", len(deps)))
			c.mu.Lock()
			wt := c.waitingTargets[target]
			if wt == nil {
				wt = make(map[Target]bool)
			}
			for _, d := range deps {
				if _, ok := c.lookup(d); ok {
					// d completed after tryCompute looked for it; its
					// waiter list is already gone, so don't wait on it.
					continue
				}
				wt[d] = true
				if _, exists := c.waiters[d]; exists {
					c.waiters[d] = append(c.waiters[d], target)
				} else {
					c.waiters[d] = []Target{target}
					c.remaining = append(c.remaining, d)
				}
			}
			if len(wt) == 0 {
				c.remaining = append(c.remaining, target)
			} else {
				c.waitingTargets[target] = wt
			}
			if c.cfg.Metrics != nil {
				c.cfg.Metrics.TargetsPending.Set(float64(len(c.waitingTargets)))
			}
			c.cond.Broadcast()
			c.mu.Unlock()
			continue
		}

		c.resultsMu.Lock()
		c.results[target] = result
		c.resultsMu.Unlock()
		if c.cfg.Metrics != nil {
			c.cfg.Metrics.TargetsComputed.WithLabelValues(target.String()).Inc()
		}

		c.mu.Lock()
		waitersList := c.waiters[target]
		delete(c.waiters, target)
		for _, waiter := range waitersList {
			wt := c.waitingTargets[waiter]
			delete(wt, target)
			if len(wt) == 0 {
				delete(c.waitingTargets, waiter)
				c.remaining = append(c.remaining, waiter)
			}
		}
		c.cond.Broadcast()
		c.mu.Unlock()
	}
}

func (c *Computer) lookup(t Target) (supersrg.MappingSnapshot, bool) {
	c.resultsMu.RLock()
	defer c.resultsMu.RUnlock()
	v, ok := c.results[t]
	return v, ok
}

// tryCompute is a pure function of target plus the current results table:
// it either produces a snapshot, asks to wait on a set of dependencies
// (returned as non-nil deps), or fails hard.
func (c *Computer) tryCompute(ctx context.Context, target Target) (supersrg.MappingSnapshot, []Target, error) {
	if target.Modifier != ModifierNone {
		return c.tryComputeModified(target)
	}
	return c.tryComputePrimitive(ctx, target)
}

func (c *Computer) tryComputeModified(target Target) (supersrg.MappingSnapshot, []Target, error) {
	unmod := target.Unmodified()
	unmodSnap, ok := c.lookup(unmod)
	if !ok {
		return supersrg.MappingSnapshot{}, []Target{unmod}, nil
	}

	var obfSnap *supersrg.MappingSnapshot
	if target.Modifier == ModifierOnlyObf && target.Original != FormatObf {
		obfTarget := Target{Original: target.Original, Renamed: FormatObf}
		snap, ok := c.lookup(obfTarget)
		if !ok {
			return supersrg.MappingSnapshot{}, []Target{obfTarget}, nil
		}
		obfSnap = &snap
	}

	result, err := applyModifier(unmodSnap, target.Modifier, obfSnap)
	return result, nil, err
}

func (c *Computer) tryComputePrimitive(ctx context.Context, target Target) (supersrg.MappingSnapshot, []Target, error) {
	switch {
	case target.Original == FormatObf && target.Renamed == FormatSrg:
		return c.fetchObf2Srg(ctx)

	case target.Original == FormatObf && target.Renamed == FormatSpigot:
		return c.fetchObf2Spigot(ctx)

	case target.Original == FormatSrg && target.Renamed == FormatMcp:
		return c.fetchSrg2Mcp(ctx)

	case target.Original == FormatObf && target.Renamed == FormatMcp:
		// mcp is only ever reached through srg: obf2mcp is the
		// composition of the two primitives rather than a fetch of its
		// own.
		obf2srg := Target{Original: FormatObf, Renamed: FormatSrg}
		srg2mcp := Target{Original: FormatSrg, Renamed: FormatMcp}
		var missing []Target
		obf2srgSnap, ok := c.lookup(obf2srg)
		if !ok {
			missing = append(missing, obf2srg)
		}
		srg2mcpSnap, ok := c.lookup(srg2mcp)
		if !ok {
			missing = append(missing, srg2mcp)
		}
		if len(missing) > 0 {
			return supersrg.MappingSnapshot{}, missing, nil
		}
		result, err := chainSnapshots(obf2srgSnap, srg2mcpSnap)
		return result, nil, err

	case target.Renamed == FormatObf:
		obf2x := Target{Original: FormatObf, Renamed: target.Original}
		snap, ok := c.lookup(obf2x)
		if !ok {
			return supersrg.MappingSnapshot{}, []Target{obf2x}, nil
		}
		result, err := reverseSnapshot(snap)
		return result, nil, err

	default:
		obf2x := Target{Original: FormatObf, Renamed: target.Original}
		obf2y := Target{Original: FormatObf, Renamed: target.Renamed}
		var missing []Target
		xSnap, ok := c.lookup(obf2x)
		if !ok {
			missing = append(missing, obf2x)
		}
		ySnap, ok := c.lookup(obf2y)
		if !ok {
			missing = append(missing, obf2y)
		}
		if len(missing) > 0 {
			return supersrg.MappingSnapshot{}, missing, nil
		}
		rev, err := reverseSnapshot(xSnap)
		if err != nil {
			return supersrg.MappingSnapshot{}, nil, err
		}
		result, err := chainSnapshots(rev, ySnap)
		return result, nil, err
	}
}

func (c *Computer) fetchObf2Srg(ctx context.Context) (supersrg.MappingSnapshot, []Target, error) {
	path, err := c.sources.Srg.FetchSrg(ctx, c.cfg.McVersion)
	if err != nil {
		return supersrg.MappingSnapshot{}, nil, err
	}
	snap, err := loadMappingFile(path)
	return snap, nil, err
}

func (c *Computer) fetchObf2Spigot(ctx context.Context) (supersrg.MappingSnapshot, []Target, error) {
	builder, err := c.sources.Spigot.FetchSpigot(ctx, c.cfg.BuildDataCommit)
	if err != nil {
		return supersrg.MappingSnapshot{}, nil, err
	}
	if err := builder.Transform(packageTransformer{prefix: "net/minecraft/server/"}); err != nil {
		return supersrg.MappingSnapshot{}, nil, err
	}
	snap, err := builder.Build()
	return snap, nil, err
}

func (c *Computer) fetchSrg2Mcp(ctx context.Context) (supersrg.MappingSnapshot, []Target, error) {
	obf2srg := Target{Original: FormatObf, Renamed: FormatSrg}
	obfSnap, ok := c.lookup(obf2srg)
	if !ok {
		return supersrg.MappingSnapshot{}, []Target{obf2srg}, nil
	}

	tables, err := c.sources.Mcp.FetchMcp(ctx, c.cfg.McpVersion, c.cfg.McVersion)
	if err != nil {
		return supersrg.MappingSnapshot{}, nil, err
	}

	builder := supersrg.NewMappingStoreBuilder()
	for _, pair := range obfSnap.Fields() {
		renamed := obfSnap.GetField(pair.Key)
		if mcpName, ok := tables.Fields[string(renamed.Name)]; ok {
			if err := builder.InsertField(renamed, supersrg.Intern(mcpName)); err != nil {
				return supersrg.MappingSnapshot{}, nil, err
			}
		}
	}
	for _, pair := range obfSnap.Methods() {
		renamed := obfSnap.GetMethod(pair.Key)
		if mcpName, ok := tables.Methods[string(renamed.Name)]; ok {
			if err := builder.InsertMethod(renamed, supersrg.Intern(mcpName)); err != nil {
				return supersrg.MappingSnapshot{}, nil, err
			}
		}
	}
	snap, err := builder.Build()
	return snap, nil, err
}

// packageTransformer prepends prefix to every class currently in the
// default (unpackaged) namespace, mirroring the Spigot fetch flow's own
// post-processing step.
type packageTransformer struct {
	supersrg.NopTransformer
	prefix string
}

func (t packageTransformer) TransformClass(_, current supersrg.ClassName) (supersrg.ClassName, bool) {
	if strings.Contains(string(current), "/") {
		return "", false
	}
	return supersrg.ClassName(t.prefix + string(current)), true
}

// applyModifier narrows unmodified per modifier. obf is the snapshot of
// target.Original -> obf, required only for the onlyobf modifier, and nil
// when target.Original is already obf (the modifier is then a no-op).
func applyModifier(unmodified supersrg.MappingSnapshot, modifier Modifier, obf *supersrg.MappingSnapshot) (supersrg.MappingSnapshot, error) {
	builder := supersrg.NewMappingStoreBuilder()

	switch modifier {
	case ModifierClasses:
		for _, pair := range unmodified.Classes() {
			if err := builder.InsertClass(pair.Original, pair.Renamed); err != nil {
				return supersrg.MappingSnapshot{}, err
			}
		}

	case ModifierMembers:
		for _, pair := range unmodified.Fields() {
			if err := builder.InsertField(pair.Key, pair.RenamedName); err != nil {
				return supersrg.MappingSnapshot{}, err
			}
		}
		for _, pair := range unmodified.Methods() {
			if err := builder.InsertMethod(pair.Key, pair.RenamedName); err != nil {
				return supersrg.MappingSnapshot{}, err
			}
		}

	case ModifierOnlyObf:
		stillObf := func(c supersrg.ClassName) bool {
			if obf == nil {
				return true
			}
			return obf.GetClass(c) == c
		}
		fieldStillObf := func(k supersrg.FieldKey) bool {
			if obf == nil {
				return true
			}
			return obf.GetField(k).Name == k.Name
		}
		methodStillObf := func(k supersrg.MethodKey) bool {
			if obf == nil {
				return true
			}
			return obf.GetMethod(k).Name == k.Name
		}
		for _, pair := range unmodified.Classes() {
			if stillObf(pair.Original) {
				if err := builder.InsertClass(pair.Original, pair.Renamed); err != nil {
					return supersrg.MappingSnapshot{}, err
				}
			}
		}
		for _, pair := range unmodified.Fields() {
			if fieldStillObf(pair.Key) {
				if err := builder.InsertField(pair.Key, pair.RenamedName); err != nil {
					return supersrg.MappingSnapshot{}, err
				}
			}
		}
		for _, pair := range unmodified.Methods() {
			if methodStillObf(pair.Key) {
				if err := builder.InsertMethod(pair.Key, pair.RenamedName); err != nil {
					return supersrg.MappingSnapshot{}, err
				}
			}
		}

	default:
		return supersrg.MappingSnapshot{}, fmt.Errorf("unsupported modifier %q", modifier)
	}

	return builder.Build()
}

// buildFromSnapshot reconstructs a builder whose Build() reproduces
// snapshot, so snapshot-level composition can reuse the builder's
// Reverse/Chain algorithms directly.
func buildFromSnapshot(s supersrg.MappingSnapshot) *supersrg.MappingStoreBuilder {
	b := supersrg.NewMappingStoreBuilder()
	for _, p := range s.Classes() {
		_ = b.InsertClass(p.Original, p.Renamed)
	}
	for _, p := range s.Fields() {
		_ = b.InsertField(p.Key, p.RenamedName)
	}
	for _, p := range s.Methods() {
		_ = b.InsertMethod(p.Key, p.RenamedName)
	}
	return b
}

func reverseSnapshot(s supersrg.MappingSnapshot) (supersrg.MappingSnapshot, error) {
	return buildFromSnapshot(s).Reverse().Build()
}

func chainSnapshots(a, b supersrg.MappingSnapshot) (supersrg.MappingSnapshot, error) {
	builder := buildFromSnapshot(a)
	if err := builder.Chain(buildFromSnapshot(b)); err != nil {
		return supersrg.MappingSnapshot{}, err
	}
	return builder.Build()
}
