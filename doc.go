// Package vizcore is the memory and synchronization core of an embedded
// vision runtime.
//
// A Runtime owns one scratch arena, one shared grayscale frame and the
// two-domain mutex that guards the frame. The main context runs vision
// operations with Process; the debug context streams the frame to a host
// with Snapshot.
//
// # Quick Start
//
//	rt, _ := vizcore.New(
//	    vizcore.WithArenaSize(256<<10),
//	    vizcore.WithFrameSize(160, 120),
//	    vizcore.WithLockTimeout(5*time.Millisecond),
//	)
//	defer rt.Close()
//
//	err := rt.Process(ctx, "drift", func(op *vizcore.Op) error {
//	    res, err := op.Translation(reference, geom.Rect{W: 64, H: 64})
//	    if err != nil {
//	        return err
//	    }
//	    op.Logger().Info("drift", "dx", res.Dx, "dy", res.Dy)
//	    return nil
//	})
//	if errors.Is(err, vizcore.ErrScratchExhausted) {
//	    // skip this frame
//	}
//
// # Scratch Memory
//
// Everything an operation allocates comes from the arena and is released when
// Process returns, whether fn succeeded, failed or panicked. Exhaustion is an
// ordinary error, never a crash. See package arena for marks and scopes.
//
// # Frame Access
//
// Process holds the frame lock for TagMain while fn runs. Snapshot tries the
// lock once for TagDebug and fails with framebuffer.ErrBusy rather than
// waiting, so the debug link never stalls the vision loop.
//
// # Observability
//
// Operations are logged through Logger (log/slog) and counted through a
// MetricsCollector:
//
//	metrics := &vizcore.BasicMetricsCollector{}
//	rt, _ := vizcore.New(
//	    vizcore.WithLogger(vizcore.NewJSONLogger(slog.LevelInfo)),
//	    vizcore.WithMetricsCollector(metrics),
//	)
//
// # Configuration
//
// The arena's default alignment follows the CPU's widest vector unit (16, 32
// or 64 bytes). Set VIZCORE_ALIGN to a power of two to override it.
package vizcore
