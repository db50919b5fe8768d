package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	grpcServer "github.com/gruzdev-dev/codex-recipes/servers/grpc"
	httpServer "github.com/gruzdev-dev/codex-recipes/servers/http"
)

func main() {
	container, err := BuildContainer()
	if err != nil {
		log.Fatalf("Fatal error building container: %v", err)
	}

	err = container.Invoke(func(
		httpSrv *httpServer.Server,
		grpcSrv *grpcServer.Server,
		cleanup *Cleanup,
	) error {
		defer cleanup.Run()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		g, ctx := errgroup.WithContext(ctx)

		g.Go(func() error {
			return httpSrv.Start(ctx)
		})

		g.Go(func() error {
			return grpcSrv.Start(ctx)
		})

		grpcSrv.MarkServing()
		return g.Wait()
	})

	if err != nil {
		log.Fatalf("Application stopped with error: %v", err)
	}
}
