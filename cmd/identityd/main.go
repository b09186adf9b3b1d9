package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dc4eu/didengine/internal/gateway"
	"github.com/dc4eu/didengine/internal/httpserver"
	"github.com/dc4eu/didengine/internal/identity"
	"github.com/dc4eu/didengine/internal/profile"
	"github.com/dc4eu/didengine/internal/resolver"
	"github.com/dc4eu/didengine/internal/vc"
	"github.com/dc4eu/didengine/internal/vp"
	"github.com/dc4eu/didengine/pkg/configuration"
	"github.com/dc4eu/didengine/pkg/logger"
	"github.com/dc4eu/didengine/pkg/trace"
	"github.com/dc4eu/didengine/pkg/vault"
)

type service interface {
	Close(ctx context.Context) error
}

func main() {
	wg := &sync.WaitGroup{}
	ctx := context.Background()

	services := make(map[string]service)

	cfg, err := configuration.New(ctx)
	if err != nil {
		panic(err)
	}

	log, err := logger.New("identityd", cfg.Common.Log.FolderPath, cfg.Common.Production)
	if err != nil {
		panic(err)
	}

	tracer, err := trace.New(ctx, cfg, log, "didengine", "identityd")
	if err != nil {
		panic(err)
	}

	documentStore, err := newEntityStore(ctx, cfg, "identity-document")
	if err != nil {
		panic(err)
	}
	profileStore, err := newEntityStore(ctx, cfg, "identity-profile")
	if err != nil {
		panic(err)
	}

	softwareVault := vault.NewSoftwareVault()

	gatewayClient := gateway.New(cfg, documentStore, softwareVault, log.New("gateway"))
	identityClient := identity.New(cfg, gatewayClient, softwareVault, log.New("identity"))
	vcClient := vc.New(identityClient, softwareVault, log.New("vc"))
	vpClient := vp.New(identityClient, vcClient, softwareVault, log.New("vp"))
	resolverRegistry := resolver.NewDefault(cfg, identityClient, log.New("resolver"))
	profileClient := profile.New(profileStore, log.New("profile"))

	httpService, err := httpserver.New(ctx, cfg, identityClient, vcClient, vpClient, resolverRegistry, profileClient, tracer, log.New("httpserver"))
	if err != nil {
		panic(err)
	}
	services["httpService"] = httpService

	termChan := make(chan os.Signal, 1)
	signal.Notify(termChan, syscall.SIGINT, syscall.SIGTERM)

	<-termChan

	mainLog := log.New("main")
	mainLog.Info("halting signal received")

	resolverRegistry.Close()

	for serviceName, svc := range services {
		if err := svc.Close(ctx); err != nil {
			mainLog.Trace("shutdown_error", "service", serviceName, "error", err)
		}
	}

	if err := tracer.Shutdown(ctx); err != nil {
		mainLog.Error(err, "tracer shutdown")
	}

	wg.Wait()

	mainLog.Info("stopped")
}
