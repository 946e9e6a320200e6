package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/vexelcorp/vexel/internal/logging"
	"github.com/vexelcorp/vexel/internal/monitoring"
	"github.com/vexelcorp/vexel/internal/shape"
	"github.com/vexelcorp/vexel/internal/store"
	"github.com/vexelcorp/vexel/internal/tracing"
	"github.com/vexelcorp/vexel/pkg/vexel"
)

// Demo: two replicas edit a shared drawing concurrently, exchange payloads,
// and end up with identical trees; the result is persisted and restored
// into a third replica.
func main() {
	logger, err := logging.NewLogger("info", "console")
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx := context.Background()
	if endpoint := os.Getenv("VEXEL_JAEGER_ENDPOINT"); endpoint != "" {
		tp, err := tracing.InitTracer("vexel-demo", endpoint)
		if err != nil {
			logger.Fatal("tracer init failed", zap.Error(err))
		}
		defer tp.Shutdown(ctx)
	}

	registry := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(registry)

	doc1, err := vexel.New(vexel.Options{ReplicaID: "r1", Logger: logger, Metrics: metrics})
	if err != nil {
		log.Fatal(err)
	}
	doc2, err := vexel.New(vexel.Options{ReplicaID: "r2", Logger: logger})
	if err != nil {
		log.Fatal(err)
	}

	ctx, span := tracing.StartSpan(ctx, "demo-session", attribute.Int("replicas", 2))
	defer span.End()

	// r1 builds a scene: a group holding a circle and a rectangle.
	groupID := doc1.AddGroup(nil, shape.PartialGroup{})
	circleID := doc1.AddCircle(&groupID, shape.PartialCircle{
		Pos:    shape.Vec2Ptr(shape.Vec2{X: 40, Y: 40}),
		Radius: shape.IntPtr(25),
	})
	doc1.AddRectangle(&groupID, shape.PartialRectangle{
		Width:  shape.IntPtr(80),
		Height: shape.IntPtr(30),
	})

	// Ship to r2, then edit concurrently: r2 recolors the circle while r1
	// moves it to the document root.
	doc2.Merge(doc1.Broadcast())
	doc2.EditCircle(circleID, shape.PartialCircle{
		Fill:    shape.ColorPtr(shape.Color{R: 200, G: 30, B: 30, A: 1}),
		Opacity: shape.Float32Ptr(0.8),
	})
	doc1.MoveObject(nil, circleID, nil)

	payload1 := doc1.Broadcast()
	payload2 := doc2.Broadcast()
	doc1.Merge(payload2)
	doc2.Merge(payload1)

	tree1, _ := json.MarshalIndent(doc1.Tree(), "", "  ")
	tree2, _ := json.Marshal(doc2.Tree())
	compact1, _ := json.Marshal(doc1.Tree())
	logger.Info("replicas converged", zap.Bool("equal", bytes.Equal(compact1, tree2)))
	os.Stdout.Write(tree1)
	os.Stdout.Write([]byte("\n"))

	// Persist r1's state and restore it into a fresh replica.
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, _ := os.UserHomeDir()
		dataDir = filepath.Join(home, ".local", "share", "vexel")
	}
	os.MkdirAll(dataDir, 0755)

	snapshots, err := store.Open(filepath.Join(dataDir, "snapshots.db"))
	if err != nil {
		log.Fatal(err)
	}
	defer snapshots.Close()

	if err := snapshots.Put("demo", doc1.Save()); err != nil {
		log.Fatal(err)
	}
	saved, err := snapshots.Get("demo")
	if err != nil {
		log.Fatal(err)
	}

	doc3, err := vexel.New(vexel.Options{ReplicaID: "r3", Logger: logger})
	if err != nil {
		log.Fatal(err)
	}
	doc3.Load(saved)
	restored, _ := json.Marshal(doc3.Tree())
	logger.Info("snapshot restored", zap.Bool("match", bytes.Equal(compact1, restored)))
}
